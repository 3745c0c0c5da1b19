package internal

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPGetMetadata(t *testing.T) {
	s := NewMCPServer(newTestPipeline().app(t), "test")

	result, err := s.handleGetMetadata(context.Background(), callTool("get_youtube_metadata", map[string]any{
		"url": "https://www.youtube.com/watch?v=abc123XYZ",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Video ID: abc123XYZ\nTitle: Talk\nChannel: Gophers\n", resultText(t, result))
}

func TestMCPGetMetadataMissingURL(t *testing.T) {
	s := NewMCPServer(newTestPipeline().app(t), "test")

	result, err := s.handleGetMetadata(context.Background(), callTool("get_youtube_metadata", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPGetTranscript(t *testing.T) {
	p := newTestPipeline()
	p.captions.result = captionsFailed("none")
	s := NewMCPServer(p.app(t), "test")

	result, err := s.handleGetTranscript(context.Background(), callTool("get_youtube_transcript", map[string]any{
		"url": "https://www.youtube.com/watch?v=abc",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "spoken words", resultText(t, result))
}

func TestMCPSummarize(t *testing.T) {
	p := newTestPipeline()
	s := NewMCPServer(p.app(t), "test")

	result, err := s.handleSummarize(context.Background(), callTool("summarize_youtube_video", map[string]any{
		"url":      "https://www.youtube.com/watch?v=abc",
		"language": "Kannada",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Title: Talk\nChannel: Gophers")
	assert.Contains(t, text, "Key_Points:")
	assert.Contains(t, p.summarizer.prompt, "Kannada")
}

func TestMCPSummarizeErrors(t *testing.T) {
	p := newTestPipeline()
	s := NewMCPServer(p.app(t), "test")

	result, err := s.handleSummarize(context.Background(), callTool("summarize_youtube_video", map[string]any{
		"url":      "https://www.youtube.com/watch?v=abc",
		"language": "Latin",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleSummarize(context.Background(), callTool("summarize_youtube_video", map[string]any{
		"url": "not a video",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, p.log.calls)
}
