package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON, one object per line.
	FormatJSON Format = "json"
	// FormatText outputs logs in slog's key=value text format.
	FormatText Format = "text"
)

// Config contains configuration for the logger.
type Config struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string

	// AddSource includes file:line in log records.
	AddSource bool

	// Writer is the output writer. Default: os.Stdout
	Writer io.Writer
}

// New creates a *slog.Logger from the configuration.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch Format(strings.ToLower(cfg.Format)) {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", cfg.Format)
	}

	return slog.New(handler), nil
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

// ParseLevel parses a level string into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (expected debug, info, warn, or error)", level)
	}
}
