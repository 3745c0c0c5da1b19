package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePromptDefaultTemplate(t *testing.T) {
	pm := NewPromptManager(t.TempDir(), "")

	for _, lang := range Languages {
		t.Run(lang.Name, func(t *testing.T) {
			prompt, err := pm.CreatePrompt("hello world", lang, nil)
			require.NoError(t, err)
			assert.Contains(t, prompt, "Provide the output in "+lang.Name+" language.")
			assert.Contains(t, prompt, "Summary:")
			assert.Contains(t, prompt, "Key_Points:")
			assert.Contains(t, prompt, "input_text: hello world")
		})
	}
}

func TestCreatePromptCustomString(t *testing.T) {
	pm := NewPromptManager(t.TempDir(), "In {{.Language}}: {{.Title}} by {{.Channel}} - {{.Transcript}}")

	prompt, err := pm.CreatePrompt("text", Spanish, &VideoMetadata{Title: "Talk", Channel: "GopherCon"})
	require.NoError(t, err)
	assert.Equal(t, "In Spanish: Talk by GopherCon - text", prompt)
}

func TestCreatePromptConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte("custom {{.Language}}"), 0644))

	prompt, err := NewPromptManager(dir, "").CreatePrompt("x", Hindi, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom Hindi", prompt)
}

func TestCreatePromptCustomFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mine.tmpl")
	require.NoError(t, os.WriteFile(file, []byte("file {{.Transcript}}"), 0644))

	prompt, err := NewPromptManager(t.TempDir(), file).CreatePrompt("body", English, nil)
	require.NoError(t, err)
	assert.Equal(t, "file body", prompt)
}

func TestCreatePromptInvalidTemplate(t *testing.T) {
	_, err := NewPromptManager(t.TempDir(), "broken {{.Language").CreatePrompt("x", English, nil)
	assert.Error(t, err)
}

func TestIsLikelyFilePath(t *testing.T) {
	assert.True(t, IsLikelyFilePath("./prompt.txt"))
	assert.True(t, IsLikelyFilePath("prompt.tmpl"))
	assert.False(t, IsLikelyFilePath("summarize this {{.Transcript}}"))
}
