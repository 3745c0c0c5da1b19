package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommandRunner answers ffprobe with a fixed duration and writes a small
// file at the output path of every ffmpeg call
type fakeCommandRunner struct {
	mu       sync.Mutex
	duration string
	fail     string
	calls    [][]string
}

func (f *fakeCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if name == f.fail {
		return []byte("boom"), errors.New("exit status 1")
	}
	if name == "ffprobe" {
		return []byte(f.duration + "\n"), nil
	}
	if len(args) > 0 {
		_ = os.WriteFile(args[len(args)-1], []byte("c"), 0644)
	}
	return nil, nil
}

func TestAudioNormalize(t *testing.T) {
	runner := &fakeCommandRunner{}
	tempDir := t.TempDir()
	audio := NewAudio(runner, tempDir, false)

	out, err := audio.Normalize(context.Background(), "/cache/audio/abc.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "abc_16k.wav"), out)

	require.Len(t, runner.calls, 1)
	cmd := strings.Join(runner.calls[0], " ")
	assert.Contains(t, cmd, "-ar 16000")
	assert.Contains(t, cmd, "-ac 1")
	assert.Contains(t, cmd, "-c:a pcm_s16le")
}

func TestAudioWorkspace(t *testing.T) {
	runner := &fakeCommandRunner{}
	tempDir := t.TempDir()
	audio := NewAudio(runner, tempDir, false)

	// the same input normalized by two runs at once
	var wg sync.WaitGroup
	outputs := make([]string, 2)
	cleanups := make([]func(), 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, cleanup, err := audio.Workspace()
			if !assert.NoError(t, err) {
				return
			}
			cleanups[i] = cleanup
			outputs[i], err = ws.Normalize(context.Background(), "/cache/audio/abc.mp3")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NotEmpty(t, outputs[0])
	require.NotEmpty(t, outputs[1])
	assert.NotEqual(t, outputs[0], outputs[1])
	for _, out := range outputs {
		assert.Equal(t, "abc_16k.wav", filepath.Base(out))
		assert.Equal(t, tempDir, filepath.Dir(filepath.Dir(out)))
		assert.FileExists(t, out)
	}

	for _, cleanup := range cleanups {
		cleanup()
	}
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAudioSplitByDuration(t *testing.T) {
	runner := &fakeCommandRunner{duration: "120.5"}
	tempDir := t.TempDir()
	audio := NewAudio(runner, tempDir, false)

	chunks, err := audio.SplitByDuration(context.Background(), "/tmp/abc_16k.wav", 55)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tempDir, "abc_16k_chunk_0.wav"),
		filepath.Join(tempDir, "abc_16k_chunk_1.wav"),
		filepath.Join(tempDir, "abc_16k_chunk_2.wav"),
	}, chunks)

	// ffprobe plus one ffmpeg call per chunk
	require.Len(t, runner.calls, 4)
	assert.Contains(t, strings.Join(runner.calls[2], " "), "-ss 55 -t 55")
}

func TestAudioSplitByDurationShortFile(t *testing.T) {
	runner := &fakeCommandRunner{duration: "30"}
	audio := NewAudio(runner, t.TempDir(), false)

	chunks, err := audio.SplitByDuration(context.Background(), "/tmp/short.wav", 55)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/short.wav"}, chunks)
	assert.Len(t, runner.calls, 1)
}

func TestAudioSplitEqualParts(t *testing.T) {
	runner := &fakeCommandRunner{duration: "100"}
	audio := NewAudio(runner, t.TempDir(), false)

	chunks, err := audio.Split(context.Background(), "/tmp/long.mp3", 4)
	require.NoError(t, err)
	assert.Len(t, chunks, 4)
	assert.Contains(t, strings.Join(runner.calls[4], " "), "-ss 75 -t 25")
}

func TestAudioDurationError(t *testing.T) {
	runner := &fakeCommandRunner{fail: "ffprobe"}
	audio := NewAudio(runner, t.TempDir(), false)

	_, err := audio.Duration(context.Background(), "/tmp/x.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffprobe failed")
}
