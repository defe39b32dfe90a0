package internal

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("chatty"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", slog.String("video_id", testVideoID))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "video_id="+testVideoID)
}

func TestNewFileLogger(t *testing.T) {
	config := &Config{CacheDir: t.TempDir(), LogLevel: "info"}
	logger, closeLog, err := NewFileLogger(config, "mcp")
	require.NoError(t, err)
	logger.Info("tool call", slog.String("tool", "get_youtube_metadata"))
	require.NoError(t, closeLog())

	data, err := os.ReadFile(filepath.Join(config.CacheDir, "logs", "mcp.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=mcp")
	assert.Contains(t, string(data), "tool=get_youtube_metadata")
}
