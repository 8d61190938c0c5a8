// Package logging provides structured logging setup for realty.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger.
// Dev mode uses human-readable text at debug level; prod uses JSON at level.
func Setup(devMode bool, level slog.Level) {
	slog.SetDefault(New(os.Stdout, devMode, level))
}

// New builds a logger writing to w.
func New(w io.Writer, devMode bool, level slog.Level) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
