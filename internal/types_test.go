package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  Language
	}{
		{"", English},
		{"English", English},
		{"spanish", Spanish},
		{"KO", Korean},
		{"Kannada", Kannada},
		{" hi ", Hindi},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseLanguage("French")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Kannada")
}

func TestLanguagesOrder(t *testing.T) {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"English", "Spanish", "Korean", "Kannada", "Hindi"}, names)
	assert.Equal(t, []string{"en", "es", "ko", "kn", "hi"}, CaptionLanguages)
}

func TestVideoReferenceURLs(t *testing.T) {
	ref := VideoReference{ID: "abc123XYZ"}
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123XYZ", ref.WatchURL())
	assert.Equal(t, "https://img.youtube.com/vi/abc123XYZ/hqdefault.jpg", ref.ThumbnailURL())
	assert.Equal(t, "https://www.youtube.com/embed/abc123XYZ", ref.EmbedURL())
	assert.Equal(t, "abc123XYZ", ref.String())
}

func TestSummaryResultSections(t *testing.T) {
	summary := SummaryResult{Text: "**Summary:**\nA talk about Go.\n\n**Key_Points:**\n- channels\n- interfaces\n"}

	synopsis, keyPoints, ok := summary.Sections()
	require.True(t, ok)
	assert.Equal(t, "A talk about Go.", synopsis)
	assert.Equal(t, "- channels\n- interfaces", keyPoints)

	_, _, ok = SummaryResult{Text: "just some text"}.Sections()
	assert.False(t, ok)

	_, _, ok = SummaryResult{Text: "Key_Points: a\nSummary: b"}.Sections()
	assert.False(t, ok)
}

func TestTranscriptSourceString(t *testing.T) {
	assert.Equal(t, "captions", SourceCaptions.String())
	assert.Equal(t, "speech-to-text", SourceSpeech.String())
}
