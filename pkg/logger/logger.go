// Package logger provides the shared structured logging setup using slog.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds the configuration for the logger.
type Config struct {
	// Output is the writer to send logs to (defaults to os.Stdout).
	Output io.Writer
	// Level is the minimum log level to output.
	Level slog.Level
	// AddSource adds source code position to log records.
	AddSource bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelInfo,
		Output: os.Stdout,
	}
}

// New creates a JSON logger with the provided configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	handler := slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	})
	return slog.New(handler)
}

// NewDefault creates a JSON logger with default configuration.
func NewDefault() *slog.Logger {
	return New(DefaultConfig())
}

// NewWithLevel creates a JSON logger with the specified log level.
func NewWithLevel(level slog.Level) *slog.Logger {
	cfg := DefaultConfig()
	cfg.Level = level
	return New(cfg)
}

// ParseLevel converts a string to a slog.Level.
// Supported values: "debug", "info", "warn", "error".
// Returns slog.LevelInfo if the level string is not recognized.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with a component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("component", name))
}
