// Package logger builds slog loggers that enrich records with request-scoped
// values and can fan out errors to Sentry.
//
// Context extractors run on every log call, so values stored in the request
// context by middleware (request IDs, session IDs) appear on every line logged
// with that context:
//
//	log := logger.New(logger.FromContext(requestIDKey{}, "request_id"))
//	log.InfoContext(ctx, "route matched", slog.String("route", "post.show"))
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// FromContext returns an extractor that logs ctx.Value(key) under attr
// when it is a non-empty string.
func FromContext(key any, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(key).(string)
		if !ok || v == "" {
			return slog.Attr{}, false
		}
		return slog.String(attr, v), true
	}
}

// New creates a JSON logger on stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}), extractors...)
}

// NewText creates a human readable logger, used by the console commands.
func NewText(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	return NewWithHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), extractors...)
}

// NewWithHandler wraps h so that extractors apply to every record.
func NewWithHandler(h slog.Handler, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(newContextHandler(h, extractors...))
}

// NewNope creates a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
