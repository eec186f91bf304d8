package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricecast/internal/config"
)

func TestNewLoggerAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "forecast finished", "column", "Medium")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "forecast finished", entry["msg"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "Medium", entry["column"])
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.With("component", "test").Warn("shown")
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "ERROR", parseLogLevel("ERROR").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}

func TestInitializeLoggerToFile(t *testing.T) {
	ResetLoggerForTesting()
	prev := slog.Default()
	t.Cleanup(func() {
		ResetLoggerForTesting()
		slog.SetDefault(prev)
	})

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: path})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("written to file")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestTraceIDHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
}

func TestInitializeLoggerFileOutputErrors(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	logger, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "app.log")})
	require.Error(t, err)
	assert.Nil(t, logger)
	assert.NoError(t, CloseLogFile())
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	prev := slog.Default()
	t.Cleanup(func() {
		ResetLoggerForTesting()
		slog.SetDefault(prev)
	})

	first, err := InitializeLogger(config.LoggingConfig{Level: "warn", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: filepath.Join(t.TempDir(), "unused.log")})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, slog.Default())
}
