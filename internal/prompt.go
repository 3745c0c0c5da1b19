package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptData for template injection
type PromptData struct {
	Language   string
	Title      string
	Channel    string
	Transcript string
}

// PromptManager handles loading and processing prompt templates
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// CreatePrompt builds a prompt from a transcript, the output language and optional metadata
func (pm *PromptManager) CreatePrompt(transcript string, lang Language, metadata *VideoMetadata) (string, error) {
	tmplContent, err := pm.templateContent()
	if err != nil {
		return "", err
	}

	return pm.buildPromptFromTemplate(tmplContent, transcript, lang, metadata)
}

// templateContent resolves the template: custom string, custom file,
// prompt.txt in the config directory, then the embedded default
func (pm *PromptManager) templateContent() (string, error) {
	if pm.promptString != "" {
		return pm.promptString, nil
	}

	promptFile := pm.promptFile
	if promptFile == "" {
		promptFile = filepath.Join(pm.configDir, "prompt.txt")
		if !FileExists(promptFile) {
			content, err := defaultFS.ReadFile("prompt.txt")
			if err != nil {
				return "", fmt.Errorf("reading embedded prompt template: %w", err)
			}
			return string(content), nil
		}
	}

	content, err := os.ReadFile(promptFile)
	if err != nil {
		return "", fmt.Errorf("reading prompt template: %w", err)
	}
	return string(content), nil
}

// buildPromptFromTemplate builds the AI prompt from template content
func (pm *PromptManager) buildPromptFromTemplate(templateContent, transcript string, lang Language, metadata *VideoMetadata) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	data := PromptData{
		Language:   lang.Name,
		Transcript: transcript,
	}

	if metadata != nil {
		data.Title = metadata.Title
		data.Channel = metadata.Channel
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// long strings are prompts, not paths
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
