package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoURL means the user has not entered a URL yet. Callers treat it as
	// "nothing to do" rather than a failure.
	ErrNoURL = errors.New("no YouTube URL provided")

	ErrInvalidInput        = errors.New("invalid YouTube URL")
	ErrLookupFailure       = errors.New("metadata lookup failed")
	ErrCaptionsUnavailable = errors.New("captions unavailable")
	ErrAudioDownload       = errors.New("could not obtain audio")
	ErrTranscription       = errors.New("transcription failed")
	ErrEmptyTranscript     = errors.New("transcript is empty")
	ErrMissingAPIKey       = errors.New("API key is required")
)

// VideoReference identifies a single YouTube video
type VideoReference struct {
	ID string
}

// WatchURL returns the canonical watch page URL for the video
func (v VideoReference) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// ThumbnailURL returns the high quality thumbnail URL
func (v VideoReference) ThumbnailURL() string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", v.ID)
}

// EmbedURL returns the URL used by the embedded player
func (v VideoReference) EmbedURL() string {
	return "https://www.youtube.com/embed/" + v.ID
}

func (v VideoReference) String() string {
	return v.ID
}

// VideoMetadata contains the fields scraped from the watch page
type VideoMetadata struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// TranscriptSource records where a transcript came from
type TranscriptSource int

const (
	SourceCaptions TranscriptSource = iota
	SourceSpeech
)

// String returns a human-readable representation of the transcript source
func (s TranscriptSource) String() string {
	switch s {
	case SourceCaptions:
		return "captions"
	case SourceSpeech:
		return "speech-to-text"
	default:
		return "unknown"
	}
}

// TranscriptResult is the full text of a video plus its provenance
type TranscriptResult struct {
	Text   string
	Source TranscriptSource
}

// SummaryResult is the model output for one run
type SummaryResult struct {
	Text     string
	Language Language
}

const (
	summaryHeading   = "Summary:"
	keyPointsHeading = "Key_Points:"
)

// Sections splits the summary into its synopsis and key points parts.
// ok is false when the model did not follow the requested layout.
func (s SummaryResult) Sections() (synopsis, keyPoints string, ok bool) {
	text := strings.ReplaceAll(s.Text, "**", "")
	si := strings.Index(text, summaryHeading)
	ki := strings.Index(text, keyPointsHeading)
	if si < 0 || ki < 0 || ki < si {
		return "", "", false
	}
	synopsis = strings.TrimSpace(text[si+len(summaryHeading) : ki])
	keyPoints = strings.TrimSpace(text[ki+len(keyPointsHeading):])
	return synopsis, keyPoints, true
}

// Language is one of the supported output languages
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (l Language) String() string {
	return l.Name
}

var (
	English = Language{Name: "English", Code: "en"}
	Spanish = Language{Name: "Spanish", Code: "es"}
	Korean  = Language{Name: "Korean", Code: "ko"}
	Kannada = Language{Name: "Kannada", Code: "kn"}
	Hindi   = Language{Name: "Hindi", Code: "hi"}
)

// Languages lists the output languages in display order
var Languages = []Language{English, Spanish, Korean, Kannada, Hindi}

// CaptionLanguages is the caption language preference, most preferred first
var CaptionLanguages = []string{"en", "es", "ko", "kn", "hi"}

// ParseLanguage accepts a language name or code, case-insensitive.
// An empty string selects English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}
	for _, l := range Languages {
		if strings.EqualFold(s, l.Name) || strings.EqualFold(s, l.Code) {
			return l, nil
		}
	}
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = l.Name
	}
	return Language{}, fmt.Errorf("unsupported language: %s (supported: %s)", s, strings.Join(names, ", "))
}
