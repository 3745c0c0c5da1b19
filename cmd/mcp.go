package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server exposing the summarizer as tools",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytsum as tools.

The MCP server provides three tools:
- get_youtube_metadata: Title and channel of a video
- get_youtube_transcript: Captions, or speech recognition when there are none
- summarize_youtube_video: Summary and key points in one of five languages

Set mcp_log = true in config.toml to log tool calls to the cache directory.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  ytsum mcp

  # Run MCP server with HTTP transport on port 8080
  ytsum mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  ytsum mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the stdio protocol
		config.Verbose = false
		config.Quiet = true
		internal.EnsureYtDlp(cmd.Context())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app := internal.NewApp(config)

		mcpServer := internal.NewMCPServer(app, version)

		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting %s MCP server on HTTP port %d...\n", internal.AppName, port)
		}

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Register the ytsum MCP server with Claude Desktop",
	Long: `Add ytsum to the mcpServers section of claude_desktop_config.json.

Other servers and settings in the file are kept. API keys are not copied;
the server reads them from config.toml or the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setupClaudeDesktop()
	},
}

// MCPServerConfig is one entry of mcpServers in claude_desktop_config.json
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

func setupClaudeDesktop() error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	configPath, err := getClaudeDesktopConfigPath()
	if err != nil {
		return fmt.Errorf("getting Claude Desktop config path: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config for Claude Desktop not found at %s", configPath)
	}
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	entry := MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env: map[string]string{
			"XDG_DATA_HOME":   xdg.DataHome,
			"XDG_CONFIG_HOME": xdg.ConfigHome,
			"XDG_CACHE_HOME":  xdg.CacheHome,
		},
	}

	data, err = mergeClaudeConfig(data, internal.AppName, entry)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Registered %s in %s\n", internal.AppName, configPath)
	fmt.Println("Restart Claude Desktop to load it")
	return nil
}

// mergeClaudeConfig sets mcpServers[name] in a Claude Desktop config and
// leaves every other key untouched
func mergeClaudeConfig(data []byte, name string, entry MCPServerConfig) ([]byte, error) {
	root := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing existing config: %w", err)
		}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := root["mcpServers"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, fmt.Errorf("parsing mcpServers: %w", err)
		}
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshaling server entry: %w", err)
	}
	servers[name] = encoded

	if root["mcpServers"], err = json.Marshal(servers); err != nil {
		return nil, fmt.Errorf("marshaling mcpServers: %w", err)
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}

// getClaudeDesktopConfigPath returns where Claude Desktop keeps its config on this OS
func getClaudeDesktopConfigPath() (string, error) {
	var configPath string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, "Library", "Application Support", "Claude", "claude_desktop_config.json")

	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configPath = filepath.Join(appData, "Claude", "claude_desktop_config.json")

	case "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, ".config", "Claude", "claude_desktop_config.json")

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return configPath, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
