package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger. LOG_FORMAT=json selects the
// structured handler with source locations; the default "pretty" format
// keeps terse text output for local development.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
