package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/viper"
)

// AppName names the XDG directories and the env prefix
const AppName = "ytsum"

// Provider names accepted in config.toml
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	SpeechGoogle  = "google"
	SpeechWhisper = "whisper"

	CaptionsInnertube = "innertube"
	CaptionsYtdlp     = "ytdlp"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings. It is built once at startup and passed
// to every component that needs it.
type Config struct {
	// User configurable settings
	LLMProvider      string
	Model            string
	SummaryTimeout   time.Duration
	SpeechProvider   string
	SpeechLanguage   string
	WhisperTimeout   time.Duration
	CaptionsProvider string
	ServerAddr       string
	Prompt           string
	Verbose          bool
	Quiet            bool
	MCPLogEnabled    bool

	// Credentials
	GeminiAPIKey string
	OpenAIAPIKey string
	GoogleAPIKey string

	// Fixed XDG paths (not configurable)
	ConfigDir    string
	DataDir      string
	CacheDir     string
	TempDir      string
	AudioDir     string
	ThumbnailDir string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml into the config directory if missing
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt writes the embedded prompt.txt into the config directory if missing
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "prompt template")
}

// EnsureYtDlp installs yt-dlp if it is not already available
func EnsureYtDlp(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

// InitConfig loads .env, then builds the Config from defaults, config.toml and the environment
func InitConfig() *Config {
	// .env is optional
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, AppName)
	dataDir := filepath.Join(xdg.DataHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)

	v := viper.New()

	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("model", "")
	v.SetDefault("summary_timeout", 2*time.Minute)
	v.SetDefault("speech_provider", SpeechGoogle)
	v.SetDefault("speech_language", "en-US")
	v.SetDefault("whisper_timeout", 10*time.Minute)
	v.SetDefault("captions_provider", CaptionsInnertube)
	v.SetDefault("server_addr", "127.0.0.1:8501")
	v.SetDefault("prompt", "") // if empty will use default prompt template
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	// Credentials are read from their conventional variable names
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("google_api_key", "GOOGLE_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		LLMProvider:      v.GetString("llm_provider"),
		Model:            v.GetString("model"),
		SummaryTimeout:   v.GetDuration("summary_timeout"),
		SpeechProvider:   v.GetString("speech_provider"),
		SpeechLanguage:   v.GetString("speech_language"),
		WhisperTimeout:   v.GetDuration("whisper_timeout"),
		CaptionsProvider: v.GetString("captions_provider"),
		ServerAddr:       v.GetString("server_addr"),
		Prompt:           v.GetString("prompt"),
		Verbose:          v.GetBool("verbose"),
		Quiet:            v.GetBool("quiet"),
		MCPLogEnabled:    v.GetBool("mcp_log"),

		GeminiAPIKey: v.GetString("gemini_api_key"),
		OpenAIAPIKey: v.GetString("openai_api_key"),
		GoogleAPIKey: v.GetString("google_api_key"),

		ConfigDir:    configDir,
		DataDir:      dataDir,
		CacheDir:     cacheDir,
		TempDir:      filepath.Join(cacheDir, "temp_chunks"),
		AudioDir:     filepath.Join(cacheDir, "audio"),
		ThumbnailDir: filepath.Join(cacheDir, "thumbnails"),
	}

	if config.Model == "" {
		config.Model = DefaultModel(config.LLMProvider)
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-1.5-flash"
}
