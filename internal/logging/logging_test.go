package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	f()

	defaultLogger = oldLogger
	return buf.String()
}

// captureLogOutputWithInit reinitializes the logger to write to a buffer, so the
// handler options set by InitLogger are exercised.
func captureLogOutputWithInit(level Level, format Format, f func()) string {
	var buf bytes.Buffer

	oldOutput := output
	output = &buf
	InitLogger(level, format)

	f()

	output = oldOutput
	InitLogger(LevelInfo, FormatText)
	return buf.String()
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, m)
	}
	return records
}

func TestInitLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", LevelDebug, true, true, true},
		{"info", LevelInfo, false, true, true},
		{"warn", LevelWarn, false, false, true},
		{"error", LevelError, false, false, false},
		{"invalid falls back to info", Level(999), false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutputWithInit(tt.level, FormatJSON, func() {
				Debug("debug message")
				Info("info message")
				Warn("warn message")
				Error("error message")
			})
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "warn message"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
			if !strings.Contains(out, "error message") {
				t.Error("error message missing")
			}
		})
	}
}

func TestInitLogger_TimeFormat(t *testing.T) {
	out := captureLogOutputWithInit(LevelInfo, FormatJSON, func() {
		Info("tick")
	})
	records := decodeLines(t, out)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	ts, _ := records[0]["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestInitLogger_TextFormat(t *testing.T) {
	out := captureLogOutputWithInit(LevelInfo, FormatText, func() {
		Info("hello", "key", "value")
	})
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "key=value") {
		t.Errorf("text output = %q", out)
	}
}

func TestDefaultOutputIsStderr(t *testing.T) {
	if output != io.Writer(os.Stderr) {
		t.Error("logs must go to stderr by default")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON || ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(json) != FormatJSON")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat(text) != FormatText")
	}
}

func TestGetRunID(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "Context with run ID",
			ctx:      WithRunID(context.Background(), "run-1"),
			expected: "run-1",
		},
		{
			name:     "Context without run ID",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "Context with wrong type value",
			ctx:      context.WithValue(context.Background(), RunIDKey, 12345),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRunID(tt.ctx); got != tt.expected {
				t.Errorf("GetRunID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestContextLoggingCarriesRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-42")
	out := captureLogOutput(func() {
		DebugContext(ctx, "d")
		InfoContext(ctx, "i")
		WarnContext(ctx, "w")
		ErrorContext(ctx, "e")
		InfoContext(context.Background(), "no run")
	})

	records := decodeLines(t, out)
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for _, r := range records[:4] {
		if r["run_id"] != "run-42" {
			t.Errorf("record %v is missing run_id", r)
		}
	}
	if _, ok := records[4]["run_id"]; ok {
		t.Error("record without run id carries run_id")
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-7")
	out := captureLogOutput(func() {
		EnrichmentMiss(ctx, "12")
		ValidationWarning(ctx, errors.New("duplicate id 12"))
		StageComplete(ctx, "extract", 1500*time.Millisecond, "entries", 3)
		SkippedLine(ctx, 9)
	})

	records := decodeLines(t, out)
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	miss := records[0]
	if miss["msg"] != "enrichment_miss" || miss["level"] != "WARN" || miss["id"] != "12" {
		t.Errorf("EnrichmentMiss record = %v", miss)
	}
	if records[1]["msg"] != "validation_warning" || records[1]["error"] != "duplicate id 12" {
		t.Errorf("ValidationWarning record = %v", records[1])
	}
	stage := records[2]
	if stage["stage"] != "extract" || stage["duration_ms"] != float64(1500) || stage["entries"] != float64(3) {
		t.Errorf("StageComplete record = %v", stage)
	}
	if records[3]["msg"] != "skipped_line" || records[3]["level"] != "DEBUG" {
		t.Errorf("SkippedLine record = %v", records[3])
	}
}

func TestStartRun(t *testing.T) {
	ctx := StartRun(context.Background())
	id := GetRunID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("run id %q is not a UUID: %v", id, err)
	}
	if again := StartRun(ctx); GetRunID(again) != id {
		t.Error("StartRun replaced an existing run id")
	}
	if NewRunID() == NewRunID() {
		t.Error("NewRunID returned the same id twice")
	}
}

func TestStage(t *testing.T) {
	out := captureLogOutput(func() {
		done := Stage(context.Background(), "serialize")
		done("records", 5)
	})
	records := decodeLines(t, out)
	if len(records) != 1 || records[0]["stage"] != "serialize" || records[0]["records"] != float64(5) {
		t.Errorf("Stage records = %v", records)
	}
}
