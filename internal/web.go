package internal

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

//go:embed web/index.html
var webFS embed.FS

var thumbnailIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SummarizeRequest is the body of POST /api/summarize and of every
// websocket message
type SummarizeRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
}

// SummarizeResponse is the aggregate result returned by POST /api/summarize
type SummarizeResponse struct {
	VideoID          string `json:"video_id"`
	EmbedURL         string `json:"embed_url"`
	Title            string `json:"title"`
	Channel          string `json:"channel"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	TranscriptSource string `json:"transcript_source"`
	Language         string `json:"language"`
	Summary          string `json:"summary"`
	SummaryHTML      string `json:"summary_html"`
	Synopsis         string `json:"synopsis,omitempty"`
	KeyPoints        string `json:"key_points,omitempty"`
}

// Event is one websocket message sent to the page
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	Data  any    `json:"data,omitempty"`
}

// WebServer serves the single page UI and its API
type WebServer struct {
	app    *App
	fiber  *fiber.App
	index  *template.Template
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *slog.Logger
}

// NewWebServer creates the Fiber app and registers all routes
func NewWebServer(app *App) *WebServer {
	s := &WebServer{
		app:    app,
		index:  template.Must(template.ParseFS(webFS, "web/index.html")),
		md:     goldmark.New(),
		policy: bluemonday.UGCPolicy(),
		logger: app.logger,
	}

	f := fiber.New(fiber.Config{
		AppName:               AppName,
		DisableStartupMessage: true,
	})
	f.Use(recover.New())
	if app.config.Verbose {
		f.Use(logger.New())
	}

	f.Get("/", s.handleIndex)
	f.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	f.Post("/api/summarize", s.handleSummarize)
	f.Get("/thumbnails/:id", s.handleThumbnail)

	f.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	f.Get("/ws/summarize", websocket.New(s.handleSocket))

	s.fiber = f
	return s
}

// Handler exposes the Fiber app, mainly for tests
func (s *WebServer) Handler() *fiber.App {
	return s.fiber
}

// Listen serves on addr until ctx is cancelled
func (s *WebServer) Listen(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		if err := s.fiber.Shutdown(); err != nil {
			s.logger.Error("shutting down web server", slog.Any("err", err))
		}
	}()

	s.logger.Info("web server listening", slog.String("addr", addr))
	return s.fiber.Listen(addr)
}

func (s *WebServer) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return s.index.Execute(c, struct {
		Languages []Language
	}{Languages: Languages})
}

func (s *WebServer) handleThumbnail(c *fiber.Ctx) error {
	id := c.Params("id")
	if !thumbnailIDPattern.MatchString(id) {
		return fiber.ErrBadRequest
	}
	path := ThumbnailPath(s.app.config.ThumbnailDir, VideoReference{ID: id})
	if !FileExists(path) {
		return fiber.ErrNotFound
	}
	return c.SendFile(path)
}

func (s *WebServer) handleSummarize(c *fiber.Ctx) error {
	var req SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	lang, err := ParseLanguage(req.Language)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	collector := &collectingReporter{}
	result, err := s.app.Run(c.UserContext(), req.URL, lang, collector)
	if err != nil {
		status, body := s.errorResponse(err, collector)
		return c.Status(status).JSON(body)
	}

	return c.JSON(s.buildResponse(result))
}

// handleSocket runs one pipeline per message. A separate reader watches the
// connection so a client that goes away cancels the run in progress.
func (s *WebServer) handleSocket(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan SummarizeRequest)
	go func() {
		defer close(requests)
		defer cancel()
		for {
			var req SummarizeRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			select {
			case requests <- req:
			case <-ctx.Done():
				return
			}
		}
	}()
	// the connection is released when this handler returns, so the reader
	// has to be gone by then
	defer func() {
		cancel()
		_ = conn.SetReadDeadline(time.Now())
		for range requests {
		}
	}()

	for req := range requests {
		runID := uuid.New().String()
		reporter := &socketReporter{server: s, conn: conn, runID: runID}

		lang, err := ParseLanguage(req.Language)
		if err != nil {
			reporter.send("error", err.Error())
			reporter.send("done", nil)
			continue
		}

		_, err = s.app.Run(ctx, req.URL, lang, reporter)
		if ctx.Err() != nil {
			s.logger.Info("client disconnected during run", slog.String("run_id", runID))
			return
		}
		if err != nil && !errors.Is(err, ErrNoURL) {
			s.logger.Error("run failed", slog.String("run_id", runID), slog.Any("err", err))
			reporter.send("error", userMessage(err))
		}
		reporter.send("done", nil)

		if reporter.broken {
			return
		}
	}
}

func (s *WebServer) errorResponse(err error, collector *collectingReporter) (int, fiber.Map) {
	switch {
	case errors.Is(err, ErrNoURL):
		return fiber.StatusBadRequest, fiber.Map{"warning": collector.firstWarning()}
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest, fiber.Map{"error": userMessage(err)}
	case errors.Is(err, ErrLookupFailure), errors.Is(err, ErrAudioDownload), errors.Is(err, ErrTranscription):
		return fiber.StatusBadGateway, fiber.Map{"error": userMessage(err)}
	default:
		s.logger.Error("run failed", slog.Any("err", err))
		return fiber.StatusInternalServerError, fiber.Map{"error": userMessage(err)}
	}
}

func (s *WebServer) buildResponse(result *RunResult) SummarizeResponse {
	resp := SummarizeResponse{
		VideoID:  result.Video.ID,
		EmbedURL: result.Video.EmbedURL(),
	}
	if result.Metadata != nil {
		resp.Title = result.Metadata.Title
		resp.Channel = result.Metadata.Channel
	}
	if result.Thumbnail != "" {
		resp.ThumbnailURL = "/thumbnails/" + result.Video.ID
	}
	if result.Transcript != nil {
		resp.TranscriptSource = result.Transcript.Source.String()
	}
	if result.Summary != nil {
		resp.Language = result.Summary.Language.Name
		resp.Summary = result.Summary.Text
		resp.SummaryHTML = s.renderHTML(result.Summary.Text)
		resp.Synopsis, resp.KeyPoints, _ = result.Summary.Sections()
	}
	return resp
}

// renderHTML converts the model's markdown to sanitized HTML
func (s *WebServer) renderHTML(markdown string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return s.policy.Sanitize(template.HTMLEscapeString(markdown))
	}
	return string(s.policy.SanitizeBytes(buf.Bytes()))
}

// userMessage maps pipeline errors to the text shown on the page
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "Invalid YouTube URL. Paste a link that contains v=<video id>."
	case errors.Is(err, ErrLookupFailure):
		return "Could not read the video page (title or channel missing)."
	case errors.Is(err, ErrAudioDownload):
		return "No captions available and the audio could not be downloaded."
	case errors.Is(err, ErrTranscription):
		return "No captions available and the audio could not be transcribed."
	case errors.Is(err, ErrEmptyTranscript):
		return "The transcript is empty."
	case errors.Is(err, ErrMissingAPIKey):
		return err.Error()
	default:
		return "Something went wrong while summarizing the video."
	}
}

// collectingReporter keeps warnings for the JSON API
type collectingReporter struct {
	NopReporter
	warnings []string
}

func (r *collectingReporter) Warning(message string) {
	r.warnings = append(r.warnings, message)
}

func (r *collectingReporter) firstWarning() string {
	if len(r.warnings) == 0 {
		return ""
	}
	return r.warnings[0]
}

// socketReporter streams each result to the page as an Event
type socketReporter struct {
	server *WebServer
	conn   *websocket.Conn
	runID  string
	broken bool
}

func (r *socketReporter) send(eventType string, data any) {
	if r.broken {
		return
	}
	if err := r.conn.WriteJSON(Event{Type: eventType, RunID: r.runID, Data: data}); err != nil {
		r.server.logger.Warn("websocket write failed", slog.String("run_id", r.runID), slog.Any("err", err))
		r.broken = true
	}
}

func (r *socketReporter) Video(ref VideoReference) {
	r.send("video", fiber.Map{"id": ref.ID, "embed_url": ref.EmbedURL()})
}

func (r *socketReporter) Metadata(metadata *VideoMetadata) {
	r.send("metadata", metadata)
}

func (r *socketReporter) Thumbnail(ref VideoReference, _ string) {
	r.send("thumbnail", fiber.Map{"url": "/thumbnails/" + ref.ID})
}

func (r *socketReporter) Transcript(transcript *TranscriptResult) {
	r.send("transcript", fiber.Map{"source": transcript.Source.String(), "length": len(transcript.Text)})
}

func (r *socketReporter) Summary(summary *SummaryResult) {
	synopsis, keyPoints, _ := summary.Sections()
	r.send("summary", fiber.Map{
		"language":   summary.Language.Name,
		"text":       summary.Text,
		"html":       r.server.renderHTML(summary.Text),
		"synopsis":   synopsis,
		"key_points": keyPoints,
	})
}

func (r *socketReporter) Warning(message string) {
	r.send("warning", message)
}

func (r *socketReporter) Interactive() bool {
	return false
}
