package logging

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"error": slog.LevelError,
		"WARN":  slog.LevelWarn,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"junk":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): got=%v want=%v", in, got, want)
		}
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var sb strings.Builder
	logger := NewLogger("warn", &sb)

	logger.Info("dropped")
	logger.Warn("kept", "tick", 3)

	out := sb.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line leaked through warn level:\n%s", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "tick=3") {
		t.Fatalf("warn line missing:\n%s", out)
	}
}

func TestDiscardNeverNil(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("discard logger is nil")
	}
	logger.Error("goes nowhere")
}
