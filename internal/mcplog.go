package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// mcpLogFile is the log file name under the cache directory
const mcpLogFile = "mcp.log"

var (
	mcpLogger     *slog.Logger
	mcpLoggerOnce sync.Once
	mcpLogEnabled bool
)

// initMCPLogger initializes the MCP logger with file output in logDir.
// stdout belongs to the stdio transport so nothing may be printed there.
func initMCPLogger(enabled bool, logDir string) {
	mcpLogEnabled = enabled

	if !enabled {
		return
	}

	if logDir == "" {
		logDir = filepath.Join(xdg.CacheHome, AppName)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		mcpLogEnabled = false
		return
	}

	logPath := filepath.Join(logDir, mcpLogFile)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		mcpLogEnabled = false
		return
	}

	mcpLogger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("component", "mcp"))
}

// InitMCPLogging initializes MCP logging based on config
func InitMCPLogging(config *Config) {
	mcpLoggerOnce.Do(func() {
		initMCPLogger(config.MCPLogEnabled, config.CacheDir)
	})
}

// mcpLogf logs a formatted message if MCP logging is enabled
func mcpLogf(level slog.Level, format string, args ...any) {
	if !mcpLogEnabled || mcpLogger == nil {
		return
	}

	mcpLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// MCPLogInfo logs an info message
func MCPLogInfo(format string, args ...any) {
	mcpLogf(slog.LevelInfo, format, args...)
}

// MCPLogError logs an error message
func MCPLogError(format string, args ...any) {
	mcpLogf(slog.LevelError, format, args...)
}

// MCPLogDebug logs a debug message
func MCPLogDebug(format string, args ...any) {
	mcpLogf(slog.LevelDebug, format, args...)
}
