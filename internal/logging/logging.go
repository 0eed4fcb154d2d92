// Package logging configures structured JSON logging for the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup returns a JSON slog.Logger writing to w at the given level.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault installs a JSON logger on stdout as the process default.
// env values other than "production" enable debug logging.
func SetupDefault(w io.Writer, env string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := slog.LevelDebug
	if strings.EqualFold(env, "production") {
		level = slog.LevelInfo
	}
	logger := Setup(w, level)
	slog.SetDefault(logger)
	return logger
}
