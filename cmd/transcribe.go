package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Get transcript from YouTube captions or speech recognition",
	Example: `  # Get transcript of a YouTube video
  ytsum transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum transcribe tAP1eZYEuKA

  # Save transcript to file
  ytsum transcribe tAP1eZYEuKA -o transcript.txt`,
	Args:   cobra.ExactArgs(1),
	PreRun: requireYtDlp,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := fetchTranscript(cmd, app, args[0])
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(transcript.Text), 0644)
		}

		fmt.Println(transcript.Text)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}
