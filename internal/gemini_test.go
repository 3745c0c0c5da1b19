package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGeminiSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		assert.Equal(t, "test-key", key)

		var req struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Contents, 1) && assert.Len(t, req.Contents[0].Parts, 1) {
			assert.Equal(t, "user", req.Contents[0].Role)
			assert.Equal(t, "the prompt", req.Contents[0].Parts[0].Text)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Summary: short\n"},{"text":"Key_Points:\n- a"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-flash", time.Minute, option.WithEndpoint(srv.URL+"/"))

	text, err := g.Summary(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "Summary: short\nKey_Points:\n- a", text)
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "models/gemini-1.5-flash", 0, option.WithEndpoint(srv.URL+"/"))

	_, err := g.Summary(context.Background(), "p")
	assert.Error(t, err)
}

func TestGeminiMissingKey(t *testing.T) {
	_, err := NewGemini("", "gemini-1.5-flash", 0).Summary(context.Background(), "p")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiModelName(t *testing.T) {
	assert.Equal(t, "models/gemini-1.5-flash", geminiModelName("gemini-1.5-flash"))
	assert.Equal(t, "models/gemini-1.5-pro", geminiModelName("models/gemini-1.5-pro"))
}
