package internal

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps LOG_LEVEL to a slog level. Anything slog does not
// recognise ("verbose", "") falls back to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger returns the portal logger: human-readable text in development,
// JSON everywhere else so log shippers can index the list/user attributes.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if env == "development" {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With("app", "tesis", "env", env)
}
