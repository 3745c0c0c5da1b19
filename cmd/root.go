package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytsum [YouTube URL or ID]",
	Short: "Summarize YouTube videos in five languages",
	Long: `ytsum summarizes YouTube videos with a language model.

It uses the video's captions when they exist and otherwise downloads
the audio and runs speech recognition on it. The summary is written in
English, Spanish, Korean, Kannada or Hindi.

Run "ytsum serve" for the web interface.`,
	Example: `  # Summarize a YouTube video (default behavior)
  ytsum "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum tAP1eZYEuKA

  # Summarize in Hindi
  ytsum tAP1eZYEuKA --lang hindi

  # Use a specific model
  ytsum "https://www.youtube.com/watch?v=tAP1eZYEuKA" --model gemini-2.0-flash

  # Use custom prompt for summary
  ytsum tAP1eZYEuKA --prompt "Summarize in {{.Language}}: {{.Transcript}}"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		setupLogging(config)
		return nil
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := args[0]
		if internal.IsLikelyCommand(arg) {
			var suggestions []string
			for _, c := range cmd.Commands() {
				name := c.Name()
				if strings.Contains(name, arg) || (len(arg) <= len(name) && strings.HasPrefix(name, arg)) {
					suggestions = append(suggestions, name)
				}
			}

			if len(suggestions) > 0 {
				return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
			}
			return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
		}

		return runSummarize(cmd, arg)
	},
}

// setupLogging installs the default slog handler. Pipeline logs go to stderr
// and stay at warn level unless --verbose is set.
func setupLogging(config *internal.Config) {
	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	if config.Quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With(slog.String("app", internal.AppName)))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir, config.AudioDir, config.ThumbnailDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")

		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(0)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

// requireYtDlp installs yt-dlp on first use for commands that may need it
func requireYtDlp(cmd *cobra.Command, args []string) {
	internal.EnsureYtDlp(cmd.Context())
}

func init() {
	internal.AddLanguageFlag(rootCmd)
	internal.AddLLMFlags(rootCmd)
	rootCmd.PreRun = requireYtDlp
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print results")
}
