// Package logger exposes a simple zap logger, with log levels.
// Logs always go to stderr so that object bytes on stdout stay untouched.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelDebug sets the log level to debug
	LevelDebug = "debug"

	// LevelInfo sets the log level to info
	LevelInfo = "info"

	// LevelWarn is the default level
	LevelWarn = "warn"

	// LevelNone disables logging
	LevelNone = "none"
)

// GetLogger returns a zap logger with the specified level
func GetLogger(level string) (*zap.Logger, error) {
	if level == LevelNone {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
