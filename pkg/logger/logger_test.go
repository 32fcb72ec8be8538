package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/divcal/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &config.Config{Env: "test", LogLevel: level, LogFormat: "json"}
	return NewWithWriter(cfg, &buf), &buf
}

func parseLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewSetsPerLoggerLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, _ := newBufferLogger(t, tt.level)
			if log.Level() != tt.want {
				t.Errorf("Expected level %v, got %v", tt.want, log.Level())
			}
		})
	}

	// Two loggers with different levels coexist
	debug, debugBuf := newBufferLogger(t, "debug")
	quiet, quietBuf := newBufferLogger(t, "error")
	debug.Debug("visible")
	quiet.Debug("hidden")
	if debugBuf.Len() == 0 {
		t.Error("Expected debug logger to write")
	}
	if quietBuf.Len() != 0 {
		t.Errorf("Expected error logger to drop debug, got %q", quietBuf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	log, buf := newBufferLogger(t, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { log.Debug("cache miss") }, "cache miss", "debug"},
		{"info", func() { log.Info("month refreshed") }, "month refreshed", "info"},
		{"warn", func() { log.Warn("rendering empty month") }, "rendering empty month", "warn"},
		{"error", func() { log.Error("upstream failed") }, "upstream failed", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := parseLine(t, buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, entry["level"])
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, entry["message"])
			}
			if entry["service"] != ServiceName || entry["env"] != "test" {
				t.Errorf("Expected service/env fields, got %v", entry)
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	log, buf := newBufferLogger(t, "info")

	log.WithFields(map[string]interface{}{
		"stock_code": "2330",
		"year":       2024,
	}).WithField("month", 6).Info("month fetched")

	entry := parseLine(t, buf)
	if entry["stock_code"] != "2330" {
		t.Errorf("Expected stock_code to be 2330, got %v", entry["stock_code"])
	}
	if entry["year"] != float64(2024) || entry["month"] != float64(6) {
		t.Errorf("Expected year/month fields, got %v", entry)
	}
}

func TestWithErrorAndComponent(t *testing.T) {
	log, buf := newBufferLogger(t, "info")

	log.WithComponent("upstream").WithError(errors.New("timeout")).Error("request failed")

	entry := parseLine(t, buf)
	if entry["error"] != "timeout" {
		t.Errorf("Expected error to be 'timeout', got %v", entry["error"])
	}
	if entry["component"] != "upstream" {
		t.Errorf("Expected component to be 'upstream', got %v", entry["component"])
	}
}

func TestContextRoundTrip(t *testing.T) {
	base, buf := newBufferLogger(t, "info")
	fallback := Nop()

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("Expected fallback for empty context")
	}

	ctx := base.WithField("request_id", "r-1").IntoContext(context.Background())
	FromContext(ctx, fallback).Info("handled")

	entry := parseLine(t, buf)
	if entry["request_id"] != "r-1" {
		t.Errorf("Expected request_id from context logger, got %v", entry)
	}
}

func TestLogFormats(t *testing.T) {
	for _, format := range []string{"json", "console", "pretty"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Env: "test", LogLevel: "info", LogFormat: format}

			NewWithWriter(cfg, &buf).Info("test message")

			if !strings.Contains(buf.String(), "test message") {
				t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
			}
		})
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	// Must not panic and must not write anywhere
	log.WithComponent("x").WithField("k", "v").Info("discarded")
}
