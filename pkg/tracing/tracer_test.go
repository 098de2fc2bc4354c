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

package tracing

import (
	"context"
	"errors"
	"testing"
)

type recordingSpan struct {
	attrs map[string]interface{}
	ended bool
}

func (s *recordingSpan) SetAttribute(key string, value interface{}) {
	s.attrs[key] = value
}

func (s *recordingSpan) End() {
	s.ended = true
}

type recordingTracer struct {
	names []string
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	s := &recordingSpan{attrs: map[string]interface{}{}}
	t.names = append(t.names, name)
	t.spans = append(t.spans, s)
	return ctx, s
}

func TestRun_Noop(t *testing.T) {
	SetTracer(nil)
	if Enabled() {
		t.Fatal("Expected tracing to be disabled by default")
	}

	called := false
	err := Run(context.Background(), "op", map[string]interface{}{"k": "v"}, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Error("Expected fn to be called")
	}
}

func TestRun_RecordsSpan(t *testing.T) {
	rec := &recordingTracer{}
	SetTracer(rec)
	defer SetTracer(nil)

	if !Enabled() {
		t.Fatal("Expected tracing to be enabled")
	}

	wantErr := errors.New("boom")
	err := Run(context.Background(), "envelope.Sign", map[string]interface{}{"operation": "transfer"}, func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}

	if len(rec.spans) != 1 || rec.names[0] != "envelope.Sign" {
		t.Fatalf("Expected one span named envelope.Sign, got %v", rec.names)
	}
	span := rec.spans[0]
	if !span.ended {
		t.Error("Expected span to be ended")
	}
	if span.attrs["operation"] != "transfer" {
		t.Errorf("operation attribute = %v", span.attrs["operation"])
	}
	if span.attrs["error"] != "boom" {
		t.Errorf("error attribute = %v", span.attrs["error"])
	}
}

func TestGetTracer_NeverNil(t *testing.T) {
	SetTracer(nil)
	if GetTracer() == nil {
		t.Fatal("GetTracer() returned nil")
	}
	ctx := context.Background()
	gotCtx, span := Start(ctx, "x")
	if gotCtx != ctx {
		t.Error("Noop tracer should return the same context")
	}
	span.SetAttribute("a", 1)
	span.End()
}

func TestInitFromEnv_Default(t *testing.T) {
	if err := InitFromEnv("message-signing"); err != nil {
		t.Fatalf("InitFromEnv() error = %v", err)
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
