package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// serveCmd runs the web interface
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve a single page where a YouTube URL and a summary language can be
entered. Title, channel, player, thumbnail and summary appear as soon
as each step finishes.`,
	Example: `  # Serve on the configured address (default 127.0.0.1:8501)
  ytsum serve

  # Listen on all interfaces
  ytsum serve --addr :8080`,
	Args:   cobra.NoArgs,
	PreRun: requireYtDlp,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateLLMRequirements(cmd, config); err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = config.ServerAddr
		}

		app := internal.NewApp(config)
		if err := internal.HandlePromptFlag(cmd, app); err != nil {
			return err
		}

		if !config.Quiet {
			cmd.Printf("Serving on http://%s\n", addr)
		}
		return internal.NewWebServer(app).Listen(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config server_addr)")
	internal.AddLLMFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
