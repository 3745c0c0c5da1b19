package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	videoIDPattern = regexp.MustCompile(`v=([a-zA-Z0-9_-]+)`)
	bareIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID finds the v=<id> query parameter in a YouTube URL
func ExtractVideoID(rawURL string) (VideoReference, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return VideoReference{}, ErrNoURL
	}

	match := videoIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return VideoReference{}, fmt.Errorf("%w: %s", ErrInvalidInput, rawURL)
	}

	return VideoReference{ID: match[1]}, nil
}

// NormalizeArg turns a bare video ID into a watch URL so CLI users can pass either
func NormalizeArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if IsValidYouTubeID(arg) {
		return VideoReference{ID: arg}.WatchURL()
	}
	return arg
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	// YouTube video IDs are exactly 11 characters of [A-Za-z0-9_-]
	return bareIDPattern.MatchString(id)
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 10 && !IsValidYouTubeID(arg) && !strings.Contains(arg, "v=")
}

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		filePath := filepath.Join(tempDir, entry.Name())
		if err := os.RemoveAll(filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", filePath, err)
		}
	}

	if err := os.Remove(tempDir); err != nil {
		fmt.Fprintf(os.Stderr, "Note: could not remove temp directory %s: %v\n", tempDir, err)
	}

	return nil
}

// IsTerminal reports whether stdout is attached to a terminal
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	if !IsTerminal() {
		return content, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(getTerminalWidth()),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// SupportedOpenAIModels lists the chat models accepted for summaries
var SupportedOpenAIModels = []string{"gpt-4o", "gpt-4o-mini", "o4-mini", "gpt-4.1-nano"}

// SupportedGeminiModels lists the Gemini models accepted for summaries
var SupportedGeminiModels = []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash", "gemini-2.5-flash"}

// ValidateModel checks if the model is supported by the given provider
func ValidateModel(provider, model string) error {
	var supported []string
	switch provider {
	case ProviderOpenAI:
		supported = SupportedOpenAIModels
	case ProviderGemini:
		supported = SupportedGeminiModels
	default:
		return fmt.Errorf("unsupported LLM provider: %s", provider)
	}
	if slices.Contains(supported, model) {
		return nil
	}
	return fmt.Errorf("unsupported model: %s (supported: %s)", model, strings.Join(supported, ", "))
}

// EnsureDirs creates directories if needed
func EnsureDirs(dir ...string) error {
	for _, dir := range dir {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}

// ValidateAPIKey returns a standardized error when a credential is missing
func ValidateAPIKey(name, envVar, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: %s key - set it in config.toml, .env or the %s environment variable", ErrMissingAPIKey, name, envVar)
	}
	return nil
}
