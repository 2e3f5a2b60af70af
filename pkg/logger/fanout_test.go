package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ err error }

func (failingHandler) Enabled(context.Context, slog.Level) bool    { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

func TestFanout_HandleContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	broken := errors.New("stdout closed")
	var buf bytes.Buffer
	f := fanout{failingHandler{err: broken}, slog.NewTextHandler(&buf, nil)}

	err := f.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "checkout failed", 0))
	require.ErrorIs(t, err, broken)
	assert.Contains(t, buf.String(), "checkout failed")
}
