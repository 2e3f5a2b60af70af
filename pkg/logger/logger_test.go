package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/logger"
)

type requestIDKey struct{}

func TestNew_JSONWithExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.Config{Format: "json", Level: "debug", Output: &buf},
		logger.ValueExtractor("request_id", requestIDKey{}),
		nil,
	)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-1")
	log.With(slog.String("component", "test")).DebugContext(ctx, "hello", slog.Int("n", 1))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])
	assert.EqualValues(t, 1, rec["n"])
}

func TestNew_SkipsMissingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.Config{Format: "json", Output: &buf},
		logger.ValueExtractor("request_id", requestIDKey{}),
	)

	log.InfoContext(context.Background(), "no id")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	_, ok := rec["request_id"]
	assert.False(t, ok)
}

func TestNew_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Format: "text", Level: "warn", Output: &buf})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	assert.NotPanics(t, func() { log.Error("discarded") })
}
