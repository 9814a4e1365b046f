// Package logging builds the process-wide slog logger from configuration.
// Components receive a *slog.Logger and add their own "component" attribute.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New creates a logger writing to w in the given format ("text" or "json")
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything (tests)
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
