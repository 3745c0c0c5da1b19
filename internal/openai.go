package internal

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file io.Reader) (string, error)
	CreateChatCompletion(ctx context.Context, model, prompt string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{client: &client}
}

// CreateTranscription implements the transcription method
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file io.Reader) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CreateChatCompletion implements the chat completion method
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	if err := ValidateModel(ProviderOpenAI, model); err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAI summarizes with chat completions and transcribes with Whisper.
// The client is created on first use so a missing key only fails the call
// that needs it.
type OpenAI struct {
	client         func() (OpenAIClientInterface, error)
	audio          *Audio
	model          string
	whisperLimit   int64
	summaryTimeout time.Duration
	whisperTimeout time.Duration
	verbose        bool
}

// NewOpenAI creates an OpenAI processor around an existing client
func NewOpenAI(client OpenAIClientInterface, audio *Audio, model string, whisperLimit int64, summaryTimeout, whisperTimeout time.Duration, verbose bool) *OpenAI {
	return &OpenAI{
		client: func() (OpenAIClientInterface, error) {
			return client, nil
		},
		audio:          audio,
		model:          model,
		whisperLimit:   whisperLimit,
		summaryTimeout: summaryTimeout,
		whisperTimeout: whisperTimeout,
		verbose:        verbose,
	}
}

// NewOpenAIWithKey creates an OpenAI processor with lazy client initialization
func NewOpenAIWithKey(apiKey string, audio *Audio, model string, whisperLimit int64, summaryTimeout, whisperTimeout time.Duration, verbose bool) *OpenAI {
	o := NewOpenAI(nil, audio, model, whisperLimit, summaryTimeout, whisperTimeout, verbose)
	o.client = sync.OnceValues(func() (OpenAIClientInterface, error) {
		if err := ValidateAPIKey("OpenAI", "OPENAI_API_KEY", apiKey); err != nil {
			return nil, err
		}
		return NewOpenAIClient(apiKey), nil
	})
	return o
}

// Summary creates a summary from a prepared prompt
func (o *OpenAI) Summary(ctx context.Context, prompt string) (string, error) {
	client, err := o.client()
	if err != nil {
		return "", err
	}

	if o.summaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.summaryTimeout)
		defer cancel()
	}

	content, err := client.CreateChatCompletion(ctx, o.model, prompt)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	return content, nil
}

// Recognize transcribes audio with Whisper. Files above the upload limit are
// split with ffmpeg; every chunk becomes one segment with a single alternative.
func (o *OpenAI) Recognize(ctx context.Context, audioFile string) ([]SpeechSegment, error) {
	client, err := o.client()
	if err != nil {
		return nil, err
	}

	if o.whisperTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.whisperTimeout)
		defer cancel()
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio file info: %w", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(o.whisperLimit)))

	chunks := []string{audioFile}
	if numChunks > 1 {
		audio, cleanup, err := o.audio.Workspace()
		if err != nil {
			return nil, err
		}
		defer cleanup()

		chunks, err = audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return nil, fmt.Errorf("splitting audio: %w", err)
		}
	}

	return o.processAudioChunks(ctx, client, chunks)
}

// processAudioChunks transcribes audio chunks sequentially
// NOTE: concurrent uploads occasionally returned a broken transcript for one
// chunk; sequential requests have been reliable
func (o *OpenAI) processAudioChunks(ctx context.Context, client OpenAIClientInterface, chunks []string) ([]SpeechSegment, error) {
	numChunks := len(chunks)

	if o.verbose {
		fmt.Printf("Transcribing chunks (%d)\n", numChunks)
	}

	segments := make([]SpeechSegment, 0, numChunks)
	for i, chunkPath := range chunks {
		file, err := os.Open(chunkPath)
		if err != nil {
			return nil, fmt.Errorf("opening chunk %s: %w", chunkPath, err)
		}

		text, err := client.CreateTranscription(ctx, file)
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", chunkPath, closeErr)
		}
		if err != nil {
			return nil, fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		segments = append(segments, SpeechSegment{Alternatives: []string{text}})

		if o.verbose {
			fmt.Printf("Transcribed chunk %d/%d\n", i+1, numChunks)
		}
	}

	return segments, nil
}
