package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSRT(t *testing.T) {
	srt := "1\r\n00:00:00,000 --> 00:00:02,000\r\nHello there\r\n\r\n" +
		"2\n00:00:02,000 --> 00:00:04,000\nfirst line\nsecond line\n\n" +
		"3\n00:00:04,000 --> 00:00:05,000\n\n\n" +
		"garbage\n"

	assert.Equal(t, []string{"Hello there", "first line", "second line"}, parseSRT(srt))
}

func TestRemoveDuplicates(t *testing.T) {
	lines := []string{"we are", "we are going", "going home", "going home", "now"}
	assert.Equal(t, []string{"we are", "going home", "now"}, removeDuplicates(lines))
	assert.Empty(t, removeDuplicates(nil))
}

func TestPickSubtitleFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"abc.ko.srt", "abc.es.srt", "other.en.srt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	file, ok := pickSubtitleFile(dir, "abc", CaptionLanguages)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "abc.es.srt"), file)

	_, ok = pickSubtitleFile(dir, "missing", CaptionLanguages)
	assert.False(t, ok)
}

func TestPublishAudio(t *testing.T) {
	audioDir := t.TempDir()
	workDir, err := os.MkdirTemp(audioDir, ".download-abc-")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "abc.mp3"), []byte("mp3"), 0644))

	out, err := publishAudio(workDir, audioDir, VideoReference{ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(audioDir, "abc.mp3"), out)
	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(workDir, "abc.mp3"))

	_, err = publishAudio(workDir, audioDir, VideoReference{ID: "missing"})
	assert.ErrorContains(t, err, "audio file not found")
}
