package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTestLoggerCapturesFields(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Info("pipeline generated",
		TransformersKey, 2,
		ConfigPathKey, "/tmp/config.json",
	)

	out := buffer.String()
	for _, part := range []string{"pipeline generated", "transformer.count", "/tmp/config.json"} {
		if !strings.Contains(out, part) {
			t.Errorf("output %q does not contain %q", out, part)
		}
	}
}

func TestTestLoggerLevelFilter(t *testing.T) {
	logger, buffer := NewTestLogger(LevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	lines := logger.Lines()
	if len(lines) != 1 {
		t.Fatalf("captured %d lines, want 1: %q", len(lines), buffer.String())
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("line %q does not contain the warning", lines[0])
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	child := logger.With(ComponentKey, "ColumnTransformer")
	child.Info("fit done")

	if !logger.Contains("ColumnTransformer") {
		t.Error("With field is missing from the record")
	}
}

func TestZerologProvider(t *testing.T) {
	var buffer bytes.Buffer
	base := zerolog.New(&buffer)
	provider := NewZerologProviderWithLogger(base)

	logger := provider.GetLoggerWithName("Resolver")
	logger.Info("config loaded", ConfigPathKey, "x.json")

	out := buffer.String()
	for _, part := range []string{"Resolver", "config loaded", "x.json"} {
		if !strings.Contains(out, part) {
			t.Errorf("output %q does not contain %q", out, part)
		}
	}
}

func TestZerologProviderLevel(t *testing.T) {
	var buffer bytes.Buffer
	base := zerolog.New(&buffer).Level(zerolog.WarnLevel)
	provider := NewZerologProviderWithLogger(base)

	logger := provider.GetLogger()
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buffer.String(), "dropped") {
		t.Error("info record emitted below the configured level")
	}
	if !strings.Contains(buffer.String(), "kept") {
		t.Error("warn record is missing")
	}
	if logger.Enabled(context.Background(), LevelInfo) {
		t.Error("Enabled(LevelInfo) = true with warn-level logger")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
