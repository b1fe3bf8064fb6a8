// Package logging initialises a [log/slog] logger from the application
// configuration and provides context-based logger propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/variantexplain/specwatch/internal/config"
)

// Attribute keys shared by all specwatch log records.
const (
	ComponentKey = "component"
	textTimeFmt  = "15:04:05.000"
)

type ctxKey struct{}

// Setup creates a *slog.Logger configured according to cfg, writing to stderr,
// and installs it as the process-wide default via slog.SetDefault.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter creates a *slog.Logger configured according to cfg, writing
// to w, and installs it as the process-wide default via slog.SetDefault.
// Use this variant in tests to capture or suppress log output.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(NewHandler(cfg, w))
	slog.SetDefault(logger)

	return logger
}

// NewHandler builds the handler selected by cfg.LogFormat. The text handler
// prints wall-clock times only, since watcher sessions rarely span days.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.EffectiveLogLevel())}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
			return slog.String(slog.TimeKey, a.Value.Time().Format(textTimeFmt))
		}

		return a
	}

	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String(ComponentKey, name))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
