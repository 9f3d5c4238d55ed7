package root

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoboard/internal/config"
)

func TestNewLoggerHonoursConfiguredLevel(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger, done, err := newLogger(config.LogConfig{Level: "debug"}, false, false, &buf)
	require.NoError(t, err)
	defer done()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	logger.Debug("store loaded")
	assert.Contains(t, buf.String(), "store loaded")

	logger, _, err = newLogger(config.LogConfig{Level: "error"}, false, false, &buf)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.Enabled(ctx, slog.LevelError))

	logger, _, err = newLogger(config.LogConfig{Level: "error"}, true, false, &buf)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestNewLoggerQuietAndFile(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := newLogger(config.LogConfig{Level: "debug"}, false, true, &buf)
	require.NoError(t, err)
	logger.Error("hidden")
	assert.Empty(t, buf.String())

	path := filepath.Join(t.TempDir(), "sb.log")
	logger, done, err := newLogger(config.LogConfig{Level: "info", File: path}, false, true, &buf)
	require.NoError(t, err)
	logger.Info("template saved", "name", "Base")
	done()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "template saved")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
