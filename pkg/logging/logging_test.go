// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"off", LevelSilent},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	if ParseLogFormat("JSON") != FormatJSON {
		t.Error("Expected JSON format")
	}
	if ParseLogFormat("text") != FormatText {
		t.Error("Expected text format")
	}
	if ParseLogFormat("yaml") != FormatText {
		t.Error("Expected unknown format to fall back to text")
	}
}

func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(LoggerOptions{Level: LevelWarn, Output: &buf})

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("Expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("Expected error line, got %q", out)
	}
}

func TestDefaultLogger_Enabled(t *testing.T) {
	logger := NewLoggerWithOptions(LoggerOptions{Level: LevelInfo})
	if logger.Enabled(LevelDebug) {
		t.Error("Expected debug to be disabled at info level")
	}
	if !logger.Enabled(LevelError) {
		t.Error("Expected error to be enabled at info level")
	}
	if logger.Enabled(LevelSilent) {
		t.Error("Silent level must never be enabled")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	for _, level := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if logger.Enabled(level) {
			t.Errorf("Discard().Enabled(%v) = true", level)
		}
	}
}

func TestEnsureLogger(t *testing.T) {
	if EnsureLogger(nil) == nil {
		t.Fatal("EnsureLogger(nil) returned nil")
	}
	l := NewLoggerWithOptions(LoggerOptions{})
	if EnsureLogger(l) != Logger(l) {
		t.Error("EnsureLogger should return the given logger")
	}
}

func TestWithFields_TextSortedAndIsolated(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithOptions(LoggerOptions{Level: LevelDebug, Output: &buf})

	child := base.WithFields(map[string]interface{}{"zeta": 1, "alpha": "a"})
	child.Info("signed")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "[INFO] signed alpha=a zeta=1" {
		t.Errorf("Unexpected child line: %q", lines[0])
	}
	if lines[1] != "[INFO] plain" {
		t.Errorf("Parent logger should not carry child fields: %q", lines[1])
	}
}

func TestWithField_Overrides(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(LoggerOptions{Level: LevelDebug, Output: &buf}).
		WithField("k", "old").
		WithField("k", "new")
	logger.Info("msg")

	if !strings.Contains(buf.String(), "k=new") || strings.Contains(buf.String(), "k=old") {
		t.Errorf("Expected overridden field, got %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := f.Format(LogEntry{
		Timestamp: ts,
		Level:     LevelWarn,
		Message:   "dropped claim",
		Fields:    map[string]interface{}{"claim": "iss"},
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, data)
	}
	if decoded["level"] != "warn" {
		t.Errorf("level = %v, want warn", decoded["level"])
	}
	if decoded["timestamp"] != "2025-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v", decoded["timestamp"])
	}
	fields, ok := decoded["fields"].(map[string]interface{})
	if !ok || fields["claim"] != "iss" {
		t.Errorf("fields = %v", decoded["fields"])
	}
}

func TestJSONFormatter_UnmarshalableField(t *testing.T) {
	f := &JSONFormatter{}
	data, err := f.Format(LogEntry{
		Level:   LevelInfo,
		Message: "bad field",
		Fields:  map[string]interface{}{"ch": make(chan int)},
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(data), "json marshal failed") {
		t.Errorf("Expected fallback output, got %q", data)
	}
}

func TestTextFormatter_Timestamp(t *testing.T) {
	f := &TextFormatter{TimeFormat: "2006-01-02"}
	data, err := f.Format(LogEntry{
		Timestamp: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		Level:     LevelInfo,
		Message:   "hello",
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(data) != "2025-06-07 hello\n" {
		t.Errorf("Format() = %q", data)
	}
}

func TestDefaultLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(LoggerOptions{Level: LevelInfo, Output: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.WithField("worker", i).Info("line")
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Errorf("Expected 20 lines, got %d", len(lines))
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"eyJhbGciOiJSUzI1NiJ9.payload.sig", "eyJh....sig"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.in); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
