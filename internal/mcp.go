package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	InitMCPLogging(app.config)

	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

func languageNames() string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Get the title and channel name of a YouTube video."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL containing v=<video id>"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Get the transcript of a YouTube video. Uses captions when available, otherwise downloads the audio and runs speech-to-text."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL containing v=<video id>"),
			mcp.Required(),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("summarize_youtube_video",
		mcp.WithDescription("Summarize a YouTube video as a short summary plus bullet key points in the requested language."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL containing v=<video id>"),
			mcp.Required(),
		),
		mcp.WithString("language",
			mcp.Description("Output language: "+languageNames()),
			mcp.DefaultString(English.Name),
		),
	), s.handleSummarize)
}

func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	MCPLogInfo("get_youtube_metadata url=%s", url)

	ref, err := ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid url", err), nil
	}

	metadata, err := s.app.Metadata(ctx, ref)
	if err != nil {
		MCPLogError("metadata %s: %v", ref.ID, err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	text := fmt.Sprintf("Video ID: %s\nTitle: %s\nChannel: %s\n", ref.ID, metadata.Title, metadata.Channel)
	return mcp.NewToolResultText(text), nil
}

func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	MCPLogInfo("get_youtube_transcript url=%s", url)

	ref, err := ExtractVideoID(url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid url", err), nil
	}

	transcript, err := s.app.Transcript(ctx, ref)
	if err != nil {
		MCPLogError("transcript %s: %v", ref.ID, err)
		return mcp.NewToolResultErrorFromErr("no transcript available", err), nil
	}

	MCPLogDebug("transcript %s from %s (%d chars)", ref.ID, transcript.Source, len(transcript.Text))
	return mcp.NewToolResultText(transcript.Text), nil
}

func (s *MCPServer) handleSummarize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	lang, err := ParseLanguage(request.GetString("language", English.Name))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	MCPLogInfo("summarize_youtube_video url=%s language=%s", url, lang.Code)

	result, err := s.app.Run(ctx, url, lang, nil)
	if err != nil {
		MCPLogError("summarize %s: %v", url, err)
		return mcp.NewToolResultErrorFromErr("summarization failed", err), nil
	}

	var buf strings.Builder
	if result.Metadata != nil {
		buf.WriteString(fmt.Sprintf("Title: %s\nChannel: %s\n\n", result.Metadata.Title, result.Metadata.Channel))
	}
	buf.WriteString(result.Summary.Text)

	return mcp.NewToolResultText(buf.String()), nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		MCPLogInfo("serving MCP over HTTP on %s", addr)
		return httpServer.Start(addr)
	}

	MCPLogInfo("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}
