// Package logger builds the slog loggers used by the validator and CLI.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// New returns a tint-backed logger for human-readable output.
func New(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level: level,
	}))
}

// NewJSON returns a JSON logger for library embedding.
func NewJSON(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Default returns the logger the validator falls back to when none is
// injected.
func Default() *slog.Logger {
	return New(slog.LevelInfo, os.Stderr)
}

// Error creates a structured error field.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
