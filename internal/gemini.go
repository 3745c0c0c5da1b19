package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	genai "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// Gemini summarizes through the Generative Language API
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
	opts    []option.ClientOption
}

// NewGemini creates a Gemini summarizer. The key is checked on first use.
func NewGemini(apiKey, model string, timeout time.Duration, opts ...option.ClientOption) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		opts:    opts,
	}
}

// Summary sends the prompt as a single user turn and returns the text of
// the first candidate unmodified
func (g *Gemini) Summary(ctx context.Context, prompt string) (string, error) {
	if err := ValidateAPIKey("Gemini", "GEMINI_API_KEY", g.apiKey); err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	svc, err := genai.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)...)
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	resp, err := svc.Models.GenerateContent(geminiModelName(g.model), &genai.GenerateContentRequest{
		Contents: []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func geminiModelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
