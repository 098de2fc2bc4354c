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

package envelope

import (
	"errors"
	"fmt"
)

// ErrEmptyIssuer is returned by NewSigner when no issuer is given.
var ErrEmptyIssuer = errors.New("issuer is required")

// ErrorKind categorizes signer failures.
type ErrorKind int

const (
	// KindKeyGeneration means the key pair could not be created. Only
	// returned by NewSigner.
	KindKeyGeneration ErrorKind = iota + 1

	// KindInvalidMessage means the message failed validation. Nothing was
	// signed; the caller must fix the message.
	KindInvalidMessage

	// KindSigning means a signing or serialization step failed after the
	// message was accepted.
	KindSigning
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindKeyGeneration:
		return "KeyGenerationError"
	case KindInvalidMessage:
		return "InvalidMessageError"
	case KindSigning:
		return "SigningError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by Signer.
//
// Example:
//
//	if envelope.IsKind(err, envelope.KindInvalidMessage) {
//	    // fix the message and resubmit
//	}
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
