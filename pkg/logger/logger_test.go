package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/pkg/logger"
)

type requestIDKey struct{}

func TestFromContext(t *testing.T) {
	t.Parallel()

	ex := logger.FromContext(requestIDKey{}, "request_id")

	_, ok := ex(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "abc")
	attr, ok := ex(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}

func TestNewTextAddsExtractedAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewText(&buf, slog.LevelDebug, logger.FromContext(requestIDKey{}, "request_id"), nil)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-1")
	log.With("component", "router").DebugContext(ctx, "matched")

	out := buf.String()
	assert.Contains(t, out, "msg=matched")
	assert.Contains(t, out, "component=router")
	assert.Contains(t, out, "request_id=req-1")
}

func TestNewTextRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewText(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithSentryWithoutDSN(t *testing.T) {
	t.Parallel()

	log := logger.NewWithSentry(logger.SentryConfig{})
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
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
