package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpenAIClient struct {
	mu         sync.Mutex
	transcript string
	completion string
	err        error
	uploads    []string
	model      string
	prompt     string
}

func (f *fakeOpenAIClient) CreateTranscription(ctx context.Context, file io.Reader) (string, error) {
	data, _ := io.ReadAll(file)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, string(data))
	return f.transcript, f.err
}

func (f *fakeOpenAIClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.model = model
	f.prompt = prompt
	return f.completion, f.err
}

func TestOpenAISummary(t *testing.T) {
	client := &fakeOpenAIClient{completion: "Summary: ok\nKey_Points:\n- one"}
	o := NewOpenAI(client, nil, "gpt-4o-mini", WhisperLimit, time.Minute, time.Minute, false)

	text, err := o.Summary(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "Summary: ok\nKey_Points:\n- one", text)
	assert.Equal(t, "gpt-4o-mini", client.model)
	assert.Equal(t, "the prompt", client.prompt)
}

func TestOpenAISummaryError(t *testing.T) {
	client := &fakeOpenAIClient{err: errors.New("rate limited")}
	o := NewOpenAI(client, nil, "gpt-4o-mini", WhisperLimit, 0, 0, false)

	_, err := o.Summary(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIMissingKey(t *testing.T) {
	o := NewOpenAIWithKey("", nil, "gpt-4o-mini", WhisperLimit, 0, 0, false)

	_, err := o.Summary(context.Background(), "p")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = o.Recognize(context.Background(), "/does/not/matter.mp3")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenAIConcurrentCalls(t *testing.T) {
	client := &fakeOpenAIClient{completion: "Summary: ok"}
	shared := NewOpenAI(client, nil, "gpt-4o-mini", WhisperLimit, 0, 0, false)
	keyless := NewOpenAIWithKey("", nil, "gpt-4o-mini", WhisperLimit, 0, 0, false)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := shared.Summary(context.Background(), "p")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := keyless.Summary(context.Background(), "p")
			if !errors.Is(err, ErrMissingAPIKey) {
				errs <- fmt.Errorf("want missing key, got %v", err)
				return
			}
			errs <- nil
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestOpenAIRecognizeSingleChunk(t *testing.T) {
	file := filepath.Join(t.TempDir(), "abc.mp3")
	require.NoError(t, os.WriteFile(file, []byte("audio"), 0644))

	client := &fakeOpenAIClient{transcript: "spoken words"}
	o := NewOpenAI(client, nil, "gpt-4o-mini", WhisperLimit, 0, time.Minute, false)

	segments, err := o.Recognize(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, []SpeechSegment{{Alternatives: []string{"spoken words"}}}, segments)
	assert.Equal(t, []string{"audio"}, client.uploads)
}

func TestOpenAIRecognizeSplitsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "abc.mp3")
	require.NoError(t, os.WriteFile(file, []byte("0123456789"), 0644))

	chunkDir := filepath.Join(dir, "chunks")
	runner := &fakeCommandRunner{duration: "90"}
	client := &fakeOpenAIClient{transcript: "part"}
	o := NewOpenAI(client, NewAudio(runner, chunkDir, false), "gpt-4o-mini", 4, 0, 0, false)

	segments, err := o.Recognize(context.Background(), file)
	require.NoError(t, err)
	assert.Len(t, segments, 3)
	assert.Equal(t, []string{"c", "c", "c"}, client.uploads)
	assert.Equal(t, "part part part", JoinBestAlternatives(segments))

	// chunks live in a per-call directory that is gone afterwards
	for _, call := range runner.calls[1:] {
		assert.NotEqual(t, chunkDir, filepath.Dir(call[len(call)-1]))
	}
	entries, err := os.ReadDir(chunkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
