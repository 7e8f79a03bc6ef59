package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// TestLogger captures log messages in memory so tests can assert on them.
type TestLogger struct {
	buffer *bytes.Buffer
	level  Level
	fields map[string]interface{}
}

// NewTestLogger creates a TestLogger capturing records at or above level.
// The returned buffer holds one JSON-ish line per record.
//
// Example:
//
//	logger, buffer := log.NewTestLogger(log.LevelDebug)
//	logger.Info("message", "key", "value")
//	if !strings.Contains(buffer.String(), "value") { ... }
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{
		buffer: buffer,
		level:  level,
		fields: make(map[string]interface{}),
	}, buffer
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) {
	if t.level <= LevelDebug {
		t.writeLog("DEBUG", msg, fields...)
	}
}

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) {
	if t.level <= LevelInfo {
		t.writeLog("INFO", msg, fields...)
	}
}

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) {
	if t.level <= LevelWarn {
		t.writeLog("WARN", msg, fields...)
	}
}

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) {
	if t.level <= LevelError {
		t.writeLog("ERROR", msg, fields...)
	}
}

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}
	return &TestLogger{buffer: t.buffer, level: t.level, fields: merged}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

// Lines returns the captured records split into lines.
func (t *TestLogger) Lines() []string {
	out := strings.TrimRight(t.buffer.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Contains reports whether any captured record contains the substring.
func (t *TestLogger) Contains(substr string) bool {
	return strings.Contains(t.buffer.String(), substr)
}

func (t *TestLogger) writeLog(level, msg string, fields ...any) {
	record := map[string]interface{}{
		"level":   level,
		"message": msg,
	}
	for k, v := range t.fields {
		record[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("field_%d", i)
		}
		if err, ok := fields[i+1].(error); ok {
			record[key] = err.Error()
			continue
		}
		record[key] = fields[i+1]
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(t.buffer, `{"level":%q,"message":%q}`+"\n", level, msg)
		return
	}
	t.buffer.Write(encoded)
	t.buffer.WriteByte('\n')
}

// testLoggerProvider hands out a shared TestLogger.
type testLoggerProvider struct {
	logger *TestLogger
}

// NewTestProvider creates a LoggerProvider whose loggers all write to the
// same TestLogger. Inject it into components under test and assert on the
// returned logger.
func NewTestProvider(level Level) (LoggerProvider, *TestLogger) {
	logger, _ := NewTestLogger(level)
	return &testLoggerProvider{logger: logger}, logger
}

func (p *testLoggerProvider) GetLogger() Logger { return p.logger }

func (p *testLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

func (p *testLoggerProvider) SetLevel(level Level) { p.logger.level = level }
