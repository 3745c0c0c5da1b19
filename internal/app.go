package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// MetadataFetcher looks up the title and channel of a video
type MetadataFetcher interface {
	Metadata(ctx context.Context, ref VideoReference) (*VideoMetadata, error)
}

// ThumbnailFetcher stores the video thumbnail locally and returns its path
type ThumbnailFetcher interface {
	Thumbnail(ctx context.Context, ref VideoReference) (string, error)
}

// CaptionsProvider looks up existing captions in one of the given languages
type CaptionsProvider interface {
	Captions(ctx context.Context, ref VideoReference, langs []string) CaptionsResult
}

// AudioProvider downloads the audio-only stream of a video to a local file
type AudioProvider interface {
	DownloadAudio(ctx context.Context, ref VideoReference) (string, error)
}

// SpeechRecognizer turns an audio file into recognized segments
type SpeechRecognizer interface {
	Recognize(ctx context.Context, audioFile string) ([]SpeechSegment, error)
}

// Summarizer sends a prompt to a language model and returns its text
type Summarizer interface {
	Summary(ctx context.Context, prompt string) (string, error)
}

// App holds the application state and dependencies
type App struct {
	metadata      MetadataFetcher
	thumbnails    ThumbnailFetcher
	captions      CaptionsProvider
	audio         AudioProvider
	speech        SpeechRecognizer
	summarizer    Summarizer
	promptManager *PromptManager
	config        *Config
	ui            UIManager
	logger        *slog.Logger
}

// NewApp wires the collaborators selected by config
func NewApp(config *Config, options ...AppOption) *App {
	cmdRunner := &DefaultCommandRunner{}
	httpClient := &http.Client{}
	ui := NewUIManager(config.Verbose, config.Quiet)

	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ytdlp := NewYtDlp(config.AudioDir, config.TempDir, config.Verbose)
	scraper := NewPageScraper(httpClient, config.ThumbnailDir)
	openAI := NewOpenAIWithKey(config.OpenAIAPIKey, audio, config.Model, WhisperLimit, config.SummaryTimeout, config.WhisperTimeout, config.Verbose)

	app := &App{
		metadata:      scraper,
		thumbnails:    scraper,
		audio:         ytdlp,
		promptManager: NewPromptManager(config.ConfigDir, config.Prompt),
		config:        config,
		ui:            ui,
		logger:        slog.Default(),
	}

	switch config.CaptionsProvider {
	case CaptionsYtdlp:
		app.captions = ytdlp
	default:
		app.captions = NewInnertubeCaptions(httpClient, config.Verbose)
	}

	switch config.SpeechProvider {
	case SpeechWhisper:
		app.speech = openAI
	default:
		app.speech = NewGoogleSpeech(config.GoogleAPIKey, config.SpeechLanguage, audio, ui)
	}

	switch config.LLMProvider {
	case ProviderOpenAI:
		app.summarizer = openAI
	default:
		app.summarizer = NewGemini(config.GeminiAPIKey, config.Model, config.SummaryTimeout)
	}

	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithMetadataFetcher sets a custom metadata source
func WithMetadataFetcher(m MetadataFetcher) AppOption {
	return func(a *App) {
		a.metadata = m
	}
}

// WithThumbnailFetcher sets a custom thumbnail downloader
func WithThumbnailFetcher(t ThumbnailFetcher) AppOption {
	return func(a *App) {
		a.thumbnails = t
	}
}

// WithCaptions sets a custom caption provider
func WithCaptions(c CaptionsProvider) AppOption {
	return func(a *App) {
		a.captions = c
	}
}

// WithAudio sets a custom audio downloader
func WithAudio(p AudioProvider) AppOption {
	return func(a *App) {
		a.audio = p
	}
}

// WithSpeech sets a custom speech recognizer
func WithSpeech(s SpeechRecognizer) AppOption {
	return func(a *App) {
		a.speech = s
	}
}

// WithSummarizer sets a custom summarizer
func WithSummarizer(s Summarizer) AppOption {
	return func(a *App) {
		a.summarizer = s
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.promptManager = pm
}

// Config returns the configuration the app was built with
func (app *App) Config() *Config {
	return app.config
}

// Metadata scrapes the title and channel from the watch page
func (app *App) Metadata(ctx context.Context, ref VideoReference) (*VideoMetadata, error) {
	metadata, err := app.metadata.Metadata(ctx, ref)
	if err != nil {
		return nil, err
	}
	app.logger.Debug("metadata fetched", slog.String("id", ref.ID), slog.String("title", metadata.Title))
	return metadata, nil
}

// Thumbnail downloads the thumbnail and returns the local file path
func (app *App) Thumbnail(ctx context.Context, ref VideoReference) (string, error) {
	return app.thumbnails.Thumbnail(ctx, ref)
}

// DownloadAudio downloads the audio-only stream for ref
func (app *App) DownloadAudio(ctx context.Context, ref VideoReference) (string, error) {
	audioFile, err := app.audio.DownloadAudio(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAudioDownload, err)
	}
	return audioFile, nil
}

// TranscribeAudio runs speech recognition and joins the best alternatives
func (app *App) TranscribeAudio(ctx context.Context, audioFile string) (string, error) {
	segments, err := app.speech.Recognize(ctx, audioFile)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	text := JoinBestAlternatives(segments)
	if text == "" {
		return "", fmt.Errorf("%w: no speech recognized", ErrTranscription)
	}
	return text, nil
}

// Transcript gets the transcript for ref
func (app *App) Transcript(ctx context.Context, ref VideoReference) (*TranscriptResult, error) {
	return app.TranscriptWithStatus(ctx, ref, false)
}

// TranscriptWithStatus tries captions first and falls back to downloading
// the audio and running speech recognition. The download always happens
// before recognition; a failure in either ends the run with an error.
func (app *App) TranscriptWithStatus(ctx context.Context, ref VideoReference, showStatus bool) (*TranscriptResult, error) {
	var spinner ProgressBar
	if showStatus {
		spinner = app.ui.NewSpinner("Fetching captions...")
		defer spinner.Finish()
	}

	captions := app.captions.Captions(ctx, ref, CaptionLanguages)
	if captions.Ok() {
		app.logger.Debug("captions found", slog.String("id", ref.ID), slog.Int("fragments", len(captions.Fragments)))
		return &TranscriptResult{
			Text:   strings.Join(captions.Fragments, ""),
			Source: SourceCaptions,
		}, nil
	}

	reason := captions.Err
	if reason == nil {
		reason = ErrCaptionsUnavailable
	}
	app.logger.Warn("captions unavailable, falling back to audio",
		slog.String("id", ref.ID), slog.Any("err", reason))

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if spinner != nil {
		spinner.Describe("No captions, downloading audio...")
		spinner.Advance()
	}
	audioFile, err := app.DownloadAudio(ctx, ref)
	if err != nil {
		app.logger.Error("audio download failed", slog.String("id", ref.ID), slog.Any("err", err))
		return nil, err
	}

	if spinner != nil {
		spinner.Describe("Transcribing audio...")
		spinner.Advance()
	}
	text, err := app.TranscribeAudio(ctx, audioFile)
	if err != nil {
		app.logger.Error("transcription failed", slog.String("id", ref.ID), slog.Any("err", err))
		return nil, err
	}

	return &TranscriptResult{Text: text, Source: SourceSpeech}, nil
}

// Summarize builds the prompt for lang and returns the model's raw text
func (app *App) Summarize(ctx context.Context, transcript string, lang Language, metadata *VideoMetadata) (*SummaryResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	prompt, err := app.promptManager.CreatePrompt(transcript, lang, metadata)
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	text, err := app.summarizer.Summary(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}

	return &SummaryResult{Text: text, Language: lang}, nil
}

// RunResult collects everything produced by one run
type RunResult struct {
	Video      VideoReference    `json:"video"`
	Metadata   *VideoMetadata    `json:"metadata,omitempty"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
	Transcript *TranscriptResult `json:"-"`
	Summary    *SummaryResult    `json:"-"`
}

// Run executes the whole pipeline for one user action, reporting each
// intermediate result as soon as it is available. An empty URL only
// produces a warning and no network calls.
func (app *App) Run(ctx context.Context, rawURL string, lang Language, reporter Reporter) (*RunResult, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}

	ref, err := ExtractVideoID(rawURL)
	if err != nil {
		if errors.Is(err, ErrNoURL) {
			reporter.Warning("Please enter a YouTube URL.")
		}
		return nil, err
	}
	result := &RunResult{Video: ref}
	reporter.Video(ref)

	logger := app.logger.With(slog.String("id", ref.ID), slog.String("language", lang.Code))
	logger.Info("run started")

	metadata, err := app.Metadata(ctx, ref)
	if err != nil {
		return result, err
	}
	result.Metadata = metadata
	reporter.Metadata(metadata)

	if path, err := app.Thumbnail(ctx, ref); err != nil {
		logger.Warn("thumbnail download failed", slog.Any("err", err))
		reporter.Warning("Thumbnail could not be downloaded.")
	} else {
		result.Thumbnail = path
		reporter.Thumbnail(ref, path)
	}

	showStatus := !app.config.Quiet && reporter.Interactive()
	transcript, err := app.TranscriptWithStatus(ctx, ref, showStatus)
	if err != nil {
		return result, err
	}
	result.Transcript = transcript
	reporter.Transcript(transcript)

	summary, err := app.Summarize(ctx, transcript.Text, lang, metadata)
	if err != nil {
		return result, err
	}
	result.Summary = summary
	reporter.Summary(summary)

	logger.Info("run finished", slog.String("source", transcript.Source.String()))
	return result, nil
}
