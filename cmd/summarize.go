package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL or ID]",
	Short: "Generate summary from YouTube video",
	Example: `  # Generate summary from YouTube video
  ytsum summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum summarize tAP1eZYEuKA

  # Summarize in Korean
  ytsum summarize tAP1eZYEuKA --lang ko

  # Use a specific model
  ytsum summarize tAP1eZYEuKA --model gemini-1.5-pro

  # Use custom prompt
  ytsum summarize tAP1eZYEuKA --prompt "tldr in {{.Language}}: {{.Transcript}}"`,
	Args:   cobra.ExactArgs(1),
	PreRun: requireYtDlp,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
}

// runSummarize runs the full pipeline and prints each step as it completes
func runSummarize(cmd *cobra.Command, arg string) error {
	lang, err := internal.LanguageFromFlag(cmd)
	if err != nil {
		return err
	}

	if err := internal.ValidateLLMRequirements(cmd, config); err != nil {
		return err
	}

	app := internal.NewApp(config)
	if err := internal.HandlePromptFlag(cmd, app); err != nil {
		return err
	}

	reporter := internal.NewConsoleReporter(internal.NewUIManager(config.Verbose, config.Quiet))
	_, err = app.Run(cmd.Context(), internal.NormalizeArg(arg), lang, reporter)
	return err
}

func init() {
	internal.AddLanguageFlag(summarizeCmd)
	internal.AddLLMFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
