package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreed420/vite-plugin-svelte/internal/config"
	"github.com/mfreed420/vite-plugin-svelte/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("loud"))
}

func TestNew_TerminalColorsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(config.LogConfig{Level: "info"}, &buf)
	logger.Info("compiled", "file", "a.svelte")

	out := buf.String()
	assert.Contains(t, out, "\033[32m")
	assert.Contains(t, out, "compiled")
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(config.LogConfig{Level: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_FileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plugin.log")
	logger := logging.New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, nil)
	logger.Info("to file")

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "to file")
	assert.NotContains(t, string(contents), "\033[")
}
