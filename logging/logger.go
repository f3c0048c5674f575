// Package logging provides structured logging for the VRAM estimator
// service: a zap logger teed to console and a rotating log file.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap.Logger configured for the given environment.
//
// Development mode logs at debug level with colored console output;
// production mode logs at info level as JSON. In both modes the log file
// receives JSON with automatic rotation (100MB max, 5 backups, 30 days).
//
// Example:
//
//	logger := logging.NewLogger(true, "vram_estimator.log")
//	defer logger.Sync()
//	logger.Info("server started", zap.String("addr", ":8000"))
func NewLogger(isDevelopment bool, logFilePath string) *zap.Logger {
	level := zapcore.InfoLevel
	if isDevelopment {
		level = zapcore.DebugLevel
	}

	core := NewMultiCore(level, logFilePath, isDevelopment)

	return zap.New(core, zap.AddCaller())
}

// NewTestLogger returns a no-op logger for tests.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}
