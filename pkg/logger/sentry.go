package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration settings.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	// MinLevel is the lowest level stored in Sentry as a log. Errors always
	// create issues.
	MinLevel slog.Level
}

// NewWithSentry creates a JSON stdout logger that also reports to Sentry.
// An empty DSN or a failed client init falls back to stdout only.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.DSN == "" {
		return NewWithHandler(stdout, extractors...)
	}

	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("sentry init failed", slog.String("error", err.Error()))
		return NewWithHandler(stdout, extractors...)
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return NewWithHandler(fanout{stdout, sentryHandler}, extractors...)
}
