package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// videoInfo is the JSON printed by the metadata command
type videoInfo struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	*internal.VideoMetadata
}

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get title and channel of a YouTube video",
	Example: `  # Get metadata from YouTube video
  ytsum metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytsum metadata tAP1eZYEuKA

  # Save metadata to file
  ytsum metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  ytsum metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		ref, err := internal.ExtractVideoID(internal.NormalizeArg(args[0]))
		if err != nil {
			return err
		}

		metadata, err := app.Metadata(cmd.Context(), ref)
		if err != nil {
			return err
		}

		info := videoInfo{
			ID:            ref.ID,
			URL:           ref.WatchURL(),
			ThumbnailURL:  ref.ThumbnailURL(),
			VideoMetadata: metadata,
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(info, "", "  ")
		} else {
			jsonData, err = json.Marshal(info)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
