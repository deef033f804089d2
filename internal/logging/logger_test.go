package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "rows", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["rows"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info entry written at warn level: %q", buf.String())
	}
}

func TestFromContext_CarriesAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = ContextWithAttrs(ctx, "run_id", "abc")
	ctx = ContextWithAttrs(ctx, "file", "data.csv")

	WithFields(ctx, "chunk", 2).Info("converted")

	out := buf.String()
	for _, want := range []string{"request_id=req-1", "run_id=abc", "file=data.csv", "chunk=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}
