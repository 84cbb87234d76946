// Package logging configures credprobe's structured logger and provides
// helpers for keeping probed credentials out of log output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls handler construction. It mirrors config.LoggingConfig
// rather than importing it, so this package has no dependency on the
// config loader.
type Config struct {
	Level            string
	Structured       bool
	StructuredFormat string
}

// Configure builds a slog.Logger per cfg, installs it as the package
// default, and returns it.
func Configure(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := io.Writer(os.Stderr)

	var handler slog.Handler
	if cfg.Structured && strings.ToLower(cfg.StructuredFormat) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
