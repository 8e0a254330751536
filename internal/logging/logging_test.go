package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":       slog.LevelWarn,
		"DEBUG":  slog.LevelDebug,
		" info ": slog.LevelInfo,
		"error":  slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesTextToStderrWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Level: "info", Stderr: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", slog.String("editor", "PROPOSITION/p1"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "editor=PROPOSITION/p1")
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "howdju.log")
	logger, closeFn, err := New(Config{File: path})
	require.NoError(t, err)

	logger.Warn("drift", slog.String("field", "text"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"drift"`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
