package logging

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a structured logger writing JSON to stderr.
// If verbose == true, level = Debug, else Info.
func NewLogger(verbose bool) *slog.Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo is NewLogger with an explicit sink, for tests.
func NewLoggerTo(w io.Writer, verbose bool) *slog.Logger {
	level := new(slog.LevelVar)
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
