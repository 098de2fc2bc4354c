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

package message

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func validMessage() Message {
	return Message{
		Operation:  "transfer",
		Audience:   "svc-b",
		TTLSeconds: 60,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m *Message)
		wantField string
	}{
		{name: "valid without body", mutate: func(*Message) {}},
		{
			name: "valid with body",
			mutate: func(m *Message) {
				m.Body = []byte("42")
				m.ContentType = "text/plain"
			},
		},
		{
			name: "valid with empty body",
			mutate: func(m *Message) {
				m.Body = []byte{}
				m.ContentType = "application/octet-stream"
			},
		},
		{name: "missing operation", mutate: func(m *Message) { m.Operation = "" }, wantField: "operation"},
		{name: "missing audience", mutate: func(m *Message) { m.Audience = "" }, wantField: "audience"},
		{name: "zero ttl", mutate: func(m *Message) { m.TTLSeconds = 0 }, wantField: "ttl"},
		{name: "negative ttl", mutate: func(m *Message) { m.TTLSeconds = -5 }, wantField: "ttl"},
		{
			name:      "body without content type",
			mutate:    func(m *Message) { m.Body = []byte("42") },
			wantField: "content type",
		},
		{
			name:   "content type without body is ignored",
			mutate: func(m *Message) { m.ContentType = "text/plain" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(&m)

			err := m.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestReservedClaim(t *testing.T) {
	for _, name := range []string{"jti", "iss", "aud", "iat", "exp", "operation", "initial_token", "parent_token", "has_body"} {
		if !ReservedClaim(name) {
			t.Errorf("ReservedClaim(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"sub", "nbf", "tenant", ""} {
		if ReservedClaim(name) {
			t.Errorf("ReservedClaim(%q) = true, want false", name)
		}
	}
}

func TestHasBody(t *testing.T) {
	m := validMessage()
	if m.HasBody() {
		t.Error("Expected nil body to be absent")
	}
	m.Body = []byte{}
	if !m.HasBody() {
		t.Error("Expected empty non-nil body to be present")
	}
}

func TestSignedMessage_JSON(t *testing.T) {
	withoutBody, err := json.Marshal(SignedMessage{TokenEnvelope: "a.b.c"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(withoutBody) != `{"token_envelope":"a.b.c"}` {
		t.Errorf("Unexpected JSON: %s", withoutBody)
	}

	withBody, err := json.Marshal(SignedMessage{TokenEnvelope: "a.b.c", Body: "d.e.f"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(withBody) != `{"token_envelope":"a.b.c","body":"d.e.f"}` {
		t.Errorf("Unexpected JSON: %s", withBody)
	}
}

func TestMessage_ExpiresAt(t *testing.T) {
	tests := []struct {
		name     string
		issuedAt int64
		ttl      int64
		want     int64
		wantErr  bool
	}{
		{name: "one minute", issuedAt: 1700000000, ttl: 60, want: 1700000060},
		{name: "largest expiry", issuedAt: 1700000000, ttl: math.MaxInt64 - 1700000000, want: math.MaxInt64},
		{name: "overflow by one", issuedAt: 1700000000, ttl: math.MaxInt64 - 1700000000 + 1, wantErr: true},
		{name: "max ttl", issuedAt: 1, ttl: math.MaxInt64, wantErr: true},
		{name: "epoch", issuedAt: 0, ttl: math.MaxInt64, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{TTLSeconds: tt.ttl}
			got, err := m.ExpiresAt(tt.issuedAt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExpiresAt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) || vErr.Field != "ttl" {
					t.Errorf("Expected ttl *ValidationError, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExpiresAt() = %d, want %d", got, tt.want)
			}
		})
	}
}
