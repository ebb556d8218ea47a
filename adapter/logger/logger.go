// Package logger builds the structured zap logger used by databases.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps a verbosity level to a zap level: zero logs warnings and errors,
// one adds info messages and two or more add debug messages.
func Level(verbose int) zapcore.Level {
	switch {
	case verbose <= 0:
		return zap.WarnLevel
	case verbose == 1:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}

// NewLogger returns a structured json logger with the level for verbose and
// the given default fields.
func NewLogger(verbose int, defaultFields map[string]any) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	opts := []zap.Option{
		zap.WithCaller(true),
	}
	for k, v := range defaultFields {
		opts = append(opts, zap.Fields(zap.Any(k, v)))
	}
	cfg.Level = zap.NewAtomicLevelAt(Level(verbose))
	return cfg.Build(opts...)
}
