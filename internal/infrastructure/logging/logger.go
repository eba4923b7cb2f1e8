// Package logging provides structured logging utilities.
//
// Logs are bracket-formatted with colors when attached to a terminal:
// [LEVEL] [TOOL] [HH:MM:SS] message key=value
package logging

import (
	"log/slog"
	"os"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(NewConsoleHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// NewToolLogger creates a logger scoped to a named tool
// (e.g., "asin-discovery", "price-refresh", "api").
func NewToolLogger(cfg config.LoggingConfig, tool string) *slog.Logger {
	return NewLogger(cfg).With("tool", tool)
}
