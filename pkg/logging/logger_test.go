package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"default info", "", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf)
	logger.Info("widget ready", "session_id", "abc123")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "widget ready" {
		t.Errorf("expected msg 'widget ready', got %v", record["msg"])
	}
	if record["session_id"] != "abc123" {
		t.Errorf("expected session_id attr, got %v", record["session_id"])
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Logger == nil {
		t.Fatal("Discard() returned Logger with nil slog.Logger")
	}
	// Error level only; nothing below should be enabled.
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Discard() should not enable info level")
	}
	logger.Error("dropped")
}
