// Package logger builds slog.Loggers from the logging section of the
// application config.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a *slog.Logger writing to stderr.
// Level is one of "debug", "info", "warn", "error" (default "info");
// format is "json" or "text" (default "text").
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination, mostly for tests.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Nop returns a logger that discards everything. Handy as a default in
// constructors that accept an optional logger.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

// ParseLevel maps a level name to its slog.Level, case-insensitively.
// Unrecognized names fall back to LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
