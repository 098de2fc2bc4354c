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

// Package message defines the outbound message handed to a signer and the
// signed result produced for transport.
package message

import (
	"fmt"
	"math"
)

// Claim names used in the token envelope.
const (
	ClaimJWTID        = "jti"
	ClaimIssuer       = "iss"
	ClaimAudience     = "aud"
	ClaimIssuedAt     = "iat"
	ClaimExpiry       = "exp"
	ClaimOperation    = "operation"
	ClaimInitialToken = "initial_token"
	ClaimParentToken  = "parent_token"
	ClaimHasBody      = "has_body"
)

// Header values used by the envelopes.
const (
	// TypeJWT marks the inner signed token.
	TypeJWT = "JWT"
	// TypeJOSE marks an outer or body envelope.
	TypeJOSE = "JOSE"
	// ContentTypeJWT is the outer envelope "cty", announcing a nested JWT.
	ContentTypeJWT = "JWT"
	// HeaderJWTID is the body envelope header parameter carrying the
	// identifier shared with the token envelope.
	HeaderJWTID = "jti"
)

var reservedClaims = map[string]struct{}{
	ClaimJWTID:        {},
	ClaimIssuer:       {},
	ClaimAudience:     {},
	ClaimIssuedAt:     {},
	ClaimExpiry:       {},
	ClaimOperation:    {},
	ClaimInitialToken: {},
	ClaimParentToken:  {},
	ClaimHasBody:      {},
}

// ReservedClaim reports whether name is set by the signer itself.
// Custom claims under a reserved name are dropped when signing.
func ReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}

// Message is an outbound message awaiting signature.
//
// Optional string fields are absent when empty. Body is absent when nil;
// a non-nil empty slice is a present, empty body.
type Message struct {
	Operation    string
	Audience     string
	TTLSeconds   int64
	InitialToken string
	ParentToken  string
	CustomClaims map[string]interface{}
	Body         []byte
	ContentType  string
}

// HasBody reports whether the message carries a body.
func (m Message) HasBody() bool {
	return m.Body != nil
}

// ValidationError reports the first field that made a Message invalid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid message: %s %s", e.Field, e.Reason)
}

// Validate checks required fields.
func (m Message) Validate() error {
	if m.Operation == "" {
		return &ValidationError{Field: "operation", Reason: "is required"}
	}
	if m.Audience == "" {
		return &ValidationError{Field: "audience", Reason: "is required"}
	}
	if m.TTLSeconds <= 0 {
		return &ValidationError{Field: "ttl", Reason: fmt.Sprintf("must be positive, got %d", m.TTLSeconds)}
	}
	if m.HasBody() && m.ContentType == "" {
		return &ValidationError{Field: "content type", Reason: "is required when a body is present"}
	}
	return nil
}

// ExpiresAt returns issuedAt + TTLSeconds, the token expiry in Unix
// seconds. A TTL that overflows int64 when added to issuedAt is a
// *ValidationError.
func (m Message) ExpiresAt(issuedAt int64) (int64, error) {
	if issuedAt > 0 && m.TTLSeconds > math.MaxInt64-issuedAt {
		return 0, &ValidationError{
			Field:  "ttl",
			Reason: fmt.Sprintf("overflows the expiry time, got %d", m.TTLSeconds),
		}
	}
	return issuedAt + m.TTLSeconds, nil
}

// SignedMessage is the result of signing a Message.
type SignedMessage struct {
	// TokenEnvelope is a compact JWS whose payload is the signed JWT.
	TokenEnvelope string `json:"token_envelope"`
	// Body is a compact JWS over the raw body, or empty when the message
	// had no body.
	Body string `json:"body,omitempty"`
}

// HasBody reports whether a body envelope is present.
func (s SignedMessage) HasBody() bool {
	return s.Body != ""
}
