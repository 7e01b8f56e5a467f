// Package logger builds slog loggers from a LogConfig.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/plantkeeper/pkdb/pkg/config"
)

// New returns a logger writing to stdout with the level and format
// taken from cfg. Unknown values fall back to info level and text
// format rather than failing.
func New(cfg *config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ParseLevel maps a level name ("debug", "info", "warn"/"warning",
// "error", case-insensitive) to its slog.Level. Anything else,
// including the empty string, means info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
