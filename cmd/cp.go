package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy transcript from YouTube to the clipboard",
	Example: `  # Copy transcript of a YouTube video
  ytsum cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum cp tAP1eZYEuKA`,
	Args:   cobra.ExactArgs(1),
	PreRun: requireYtDlp,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := fetchTranscript(cmd, app, args[0])
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript.Text); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cpCmd)
}
