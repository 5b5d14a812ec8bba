package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"ContentCurator/internal/config"
)

// New creates a console slog.Logger from the logging section.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWriter(os.Stdout, cfg)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(cfg.Level)}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
