// Package log provides a structured logging interface for preprocessing
// operations.
//
// The package defines a minimal, slog-compatible logging interface so the
// backing implementation can be swapped freely. The default provider is
// backed by zerolog; a TestLogger is available for asserting on log output
// in tests.
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog field conventions. Fields are alternating key/value pairs.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//
	//	logger.Info("pipeline generated",
	//	    log.TransformersKey, 4,
	//	    log.ConfigPathKey, path,
	//	)
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error it is rendered under the "error" key.
	Error(msg string, fields ...any)

	// With returns a new Logger that includes the given fields in every
	// subsequent log message.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive field construction.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ToLogLevel converts a textual level ("debug", "info", "warn", "error")
// to a Level. Unknown strings map to LevelInfo.
func ToLogLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerProvider creates and configures loggers. It exists so components
// can take their logging backend by injection and tests can capture output.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for loggers from this provider.
	SetLevel(level Level)
}
