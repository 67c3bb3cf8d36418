package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	defer SetLevel("info")

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero config", Config{}, false},
		{"text format", Config{Level: "debug", Format: "text"}, false},
		{"console alias", Config{Level: "info", Format: "console"}, false},
		{"unknown level", Config{Level: "verbose"}, true},
		{"unknown format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	l.With("component", "filestore").Warn("record unreadable", "path", "/tmp/x")

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "record unreadable" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["component"] != "filestore" {
		t.Errorf("component = %v, want filestore", entry["component"])
	}
}

func TestLogger_MasksWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	id := strings.Repeat("ab", 32)
	l.With("session_id", id).Info("renewed", "metrics_token", "s3cret")

	entry := decodeEntry(t, &buf)
	if entry["session_id"] != "abab...abab" {
		t.Errorf("session_id = %v, want masked", entry["session_id"])
	}
	if entry["metrics_token"] != redactedValue {
		t.Errorf("metrics_token = %v, want redacted", entry["metrics_token"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	l.Debug("before")
	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("after")

	SetLevel("nonsense")
	if GetLevel() != "debug" {
		t.Errorf("unknown level changed the level to %q", GetLevel())
	}

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug entry logged before level change")
	}
	if !strings.Contains(out, "after") {
		t.Error("debug entry missing after level change")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDefaultAndDiscard(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	var buf bytes.Buffer
	prev := Default()
	defer SetDefault(prev)

	SetDefault(FromSlog(slog.New(slog.NewJSONHandler(&buf, nil))))
	SetDefault(nil)
	Default().Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Error("SetDefault(nil) should keep the previous default")
	}

	// Must not panic or write anywhere.
	Discard().With("k", "v").Error("nothing")
}
