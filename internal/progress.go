package internal

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output, prompts)
type UIManager interface {
	// Progress bars
	NewProgressBar(total int, description string) ProgressBar
	NewSpinner(description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...any)

	// Status messages
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Set(current int)
	Advance()
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	verbose bool
	quiet   bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
	}
}

// silent reports whether progress output must be suppressed
func (ui *StandardUIManager) silent() bool {
	return ui.quiet || !IsTerminal()
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.silent() {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(int64(total))}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.silent() {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(-1)}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Println(args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Set(current int) {
	_ = v.bar.Set(current)
}

func (v *VisibleProgressBar) Advance() {
	_ = v.bar.Add(1)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Set(current int) {
	_ = s.bar.Set(current)
}

func (s *SilentProgressBar) Advance() {
	_ = s.bar.Add(1)
}

func (s *SilentProgressBar) Describe(description string) {}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}
