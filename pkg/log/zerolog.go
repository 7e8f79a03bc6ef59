package log

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// zerologProvider is the default LoggerProvider, backed by rs/zerolog with
// JSON output on standard error.
type zerologProvider struct {
	mu    sync.Mutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider creates a LoggerProvider writing JSON records to
// standard error at the given minimum level.
func NewZerologProvider(level Level) LoggerProvider {
	base := zerolog.New(os.Stderr).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Logger()
	return &zerologProvider{base: base, level: level}
}

// NewZerologProviderWithLogger wraps an existing zerolog.Logger. Useful for
// tests that capture output in a buffer.
func NewZerologProviderWithLogger(base zerolog.Logger) LoggerProvider {
	return &zerologProvider{base: base, level: LevelDebug}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &zerologLogger{logger: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &zerologLogger{logger: p.base.With().Str(ComponentKey, name).Logger()}
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.base = p.base.Level(toZerologLevel(level))
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.logger.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.logger.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.logger.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.logger.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.logger.GetLevel()
}

// emit attaches structured fields to a zerolog event. A leading error value
// without a key is rendered under the standard "error" key; objects that
// implement zerolog.LogObjectMarshaler keep their structured form.
func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	i := 0
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			if obj, ok := err.(zerolog.LogObjectMarshaler); ok {
				event = event.Object("error", obj)
			} else {
				event = event.Err(err)
			}
			i = 1
		}
	}
	for ; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}
