package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLogLevel maps a level name to a slog level, defaulting to info
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a text logger writing to w
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}))
}

// NewLoggerFromConfig creates the stderr logger used by the CLI and HTTP server.
// Verbose forces debug output; Quiet keeps only errors.
func NewLoggerFromConfig(config *Config) *slog.Logger {
	level := config.LogLevel
	switch {
	case config.Verbose:
		level = "debug"
	case config.Quiet:
		level = "error"
	}
	return NewLogger(os.Stderr, level)
}

// NewFileLogger creates a logger appending to logs/name.log under the cache dir.
// It is used in MCP stdio mode where stdout carries the protocol.
// The returned close function releases the file.
func NewFileLogger(config *Config, name string) (*slog.Logger, func() error, error) {
	logDir := filepath.Join(config.CacheDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, name+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	level := config.LogLevel
	if config.Verbose {
		level = "debug"
	}
	return NewLogger(logFile, level).With(slog.String("component", name)), logFile.Close, nil
}
