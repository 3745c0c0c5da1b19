package internal

import (
	"fmt"
	"os"
)

// Reporter receives each intermediate result of a run as it becomes available
type Reporter interface {
	Video(ref VideoReference)
	Metadata(metadata *VideoMetadata)
	Thumbnail(ref VideoReference, path string)
	Transcript(transcript *TranscriptResult)
	Summary(summary *SummaryResult)
	Warning(message string)

	// Interactive reports whether terminal spinners may be shown
	Interactive() bool
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Video(VideoReference) {}
func (NopReporter) Metadata(*VideoMetadata) {}
func (NopReporter) Thumbnail(VideoReference, string) {}
func (NopReporter) Transcript(*TranscriptResult) {}
func (NopReporter) Summary(*SummaryResult) {}
func (NopReporter) Warning(string) {}
func (NopReporter) Interactive() bool { return false }

// ConsoleReporter prints results for the CLI, rendering the summary with glamour
type ConsoleReporter struct {
	ui UIManager
}

// NewConsoleReporter creates a reporter that writes through ui
func NewConsoleReporter(ui UIManager) *ConsoleReporter {
	return &ConsoleReporter{ui: ui}
}

func (c *ConsoleReporter) Video(ref VideoReference) {
	c.ui.Verbose("Video ID: %s\n", ref.ID)
}

func (c *ConsoleReporter) Metadata(metadata *VideoMetadata) {
	c.ui.Printf("Title: %s\nChannel: %s\n\n", metadata.Title, metadata.Channel)
}

func (c *ConsoleReporter) Thumbnail(ref VideoReference, path string) {
	c.ui.Verbose("Thumbnail saved to %s\n", path)
}

func (c *ConsoleReporter) Transcript(transcript *TranscriptResult) {
	c.ui.Verbose("Transcript from %s (%d characters)\n", transcript.Source, len(transcript.Text))
}

func (c *ConsoleReporter) Summary(summary *SummaryResult) {
	rendered, err := RenderMarkdown(summary.Text)
	if err != nil {
		rendered = summary.Text
	}
	fmt.Println(rendered)
}

func (c *ConsoleReporter) Warning(message string) {
	fmt.Fprintf(os.Stderr, "Warning: %s\n", message)
}

func (c *ConsoleReporter) Interactive() bool {
	return true
}
