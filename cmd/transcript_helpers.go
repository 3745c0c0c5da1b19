package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// fetchTranscript resolves the argument to a video and returns its transcript,
// falling back to speech recognition when the video has no captions
func fetchTranscript(cmd *cobra.Command, app *internal.App, arg string) (*internal.TranscriptResult, error) {
	ref, err := internal.ExtractVideoID(internal.NormalizeArg(arg))
	if err != nil {
		return nil, err
	}

	transcript, err := app.TranscriptWithStatus(cmd.Context(), ref, !config.Quiet)
	if err != nil {
		return nil, fmt.Errorf("no transcript for %s: %w", ref.ID, err)
	}

	if config.Verbose {
		fmt.Printf("Transcript from %s\n", transcript.Source)
	}

	return transcript, nil
}
