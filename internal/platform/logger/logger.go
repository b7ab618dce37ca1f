package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON structured logger on stdout. Level defaults to info;
// set LOG_LEVEL=debug to see disabled-step and cache traffic.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
