package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddLanguageFlag adds the output language flag
func AddLanguageFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("lang", "l", English.Name, "Summary language: "+languageNames())
}

// AddLLMFlags adds flags related to the summarization model
func AddLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for summaries (defaults depend on llm_provider)")
	cmd.Flags().StringP("prompt", "p", "", "Custom prompt (string or file path)")
}

// LanguageFromFlag resolves the --lang flag
func LanguageFromFlag(cmd *cobra.Command) (Language, error) {
	name, err := cmd.Flags().GetString("lang")
	if err != nil {
		return Language{}, fmt.Errorf("failed to get lang flag: %w", err)
	}
	return ParseLanguage(name)
}

// HandlePromptFlag processes the --prompt flag to set custom prompt
func HandlePromptFlag(cmd *cobra.Command, app *App) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}

	if prompt == "" {
		return nil
	}

	app.SetPromptManager(NewPromptManager(app.config.ConfigDir, prompt))

	if IsLikelyFilePath(prompt) && FileExists(prompt) {
		app.ui.Verbose("Using custom prompt file: %s\n", prompt)
	} else {
		app.ui.Verbose("Using custom prompt string\n")
	}

	return nil
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	config.Verbose = config.Verbose || verbose
	config.Quiet = config.Quiet || quiet
	return nil
}

// ValidateLLMRequirements applies the --model flag and checks the model
// against the configured provider. Credentials are checked on first use.
func ValidateLLMRequirements(cmd *cobra.Command, config *Config) error {
	modelFlag, _ := cmd.Flags().GetString("model")
	if modelFlag != "" {
		if err := ValidateModel(config.LLMProvider, modelFlag); err != nil {
			return err
		}
		config.Model = modelFlag
	} else if err := ValidateModel(config.LLMProvider, config.Model); err != nil {
		return fmt.Errorf("invalid model in config: %w", err)
	}

	return nil
}
