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

// Package envelope signs outbound messages into nested JWS envelopes.
//
// Every signed message has a token envelope: a JWS (typ JOSE, cty JWT, kid
// set to the issuer) whose payload is a signed JWT carrying the message
// claims. A message with a body also gets a body envelope: a JWS over the
// raw body bytes whose protected header carries the body content type and
// the same "jti" as the token, so a receiver can prove the two belong
// together.
package envelope

import (
	"context"
	"crypto"
	"io"
	"sort"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/sigstore/message-signing/pkg/keys"
	"github.com/sigstore/message-signing/pkg/logging"
	"github.com/sigstore/message-signing/pkg/message"
	"github.com/sigstore/message-signing/pkg/tracing"
)

// keySigner creates JWS signers bound to one private key.
type keySigner interface {
	NewSigner(opts *jose.SignerOptions) (jose.Signer, error)
}

var _ keySigner = (*keys.Material)(nil)

// Signer signs messages on behalf of one issuer with one ephemeral key pair.
// It is safe for concurrent use.
type Signer struct {
	issuer  string
	keys    *keys.Material
	signing keySigner
	random  io.Reader
	now     func() time.Time
	logger  logging.Logger
}

// NewSigner generates a key pair and returns a Signer for issuer.
//
// Key generation happens here rather than on first use, so a Signer that
// exists can always sign. A generation failure is returned as an *Error of
// kind KindKeyGeneration.
func NewSigner(issuer string, opts ...Option) (*Signer, error) {
	if issuer == "" {
		return nil, ErrEmptyIssuer
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	material, err := keys.Generate(cfg.keyOpts)
	if err != nil {
		return nil, newError(KindKeyGeneration, "cannot create signing key pair", err)
	}

	logger := cfg.logger.WithFields(map[string]interface{}{
		"issuer":   issuer,
		"key_hint": material.Hint(),
	})
	logger.Debug("generated %s signing key", material.Algorithm())

	return &Signer{
		issuer:  issuer,
		keys:    material,
		signing: material,
		random:  cfg.random,
		now:     cfg.now,
		logger:  logger,
	}, nil
}

// Issuer returns the issuer identity; it is also the outer envelope's kid.
func (s *Signer) Issuer() string {
	return s.issuer
}

// PublicKey returns the public key receivers need to verify envelopes.
func (s *Signer) PublicKey() crypto.PublicKey {
	return s.keys.PublicKey()
}

// PublicKeyPEM returns the public key as PKIX PEM.
func (s *Signer) PublicKeyPEM() (string, error) {
	return s.keys.PublicKeyPEM()
}

// SignatureAlgorithm returns the JWS algorithm used for every envelope.
func (s *Signer) SignatureAlgorithm() jose.SignatureAlgorithm {
	return s.keys.SignatureAlgorithm()
}

// Sign is SignContext with a background context.
func (s *Signer) Sign(msg message.Message) (message.SignedMessage, error) {
	return s.SignContext(context.Background(), msg)
}

// SignContext validates msg and produces its signed envelopes.
//
// The context only carries tracing; signing is CPU bound and is not
// cancelled. Errors are *Error values: KindInvalidMessage if msg fails
// validation (nothing is signed) and KindSigning for any later failure. A
// partial SignedMessage is never returned.
func (s *Signer) SignContext(ctx context.Context, msg message.Message) (message.SignedMessage, error) {
	var signed message.SignedMessage

	attrs := map[string]interface{}{
		"issuer":    s.issuer,
		"audience":  msg.Audience,
		"operation": msg.Operation,
		"has_body":  msg.HasBody(),
	}
	err := tracing.Run(ctx, "envelope.Sign", attrs, func(context.Context) error {
		var err error
		signed, err = s.sign(msg)
		return err
	})
	if err != nil {
		return message.SignedMessage{}, err
	}
	return signed, nil
}

func (s *Signer) sign(msg message.Message) (message.SignedMessage, error) {
	if err := msg.Validate(); err != nil {
		return message.SignedMessage{}, newError(KindInvalidMessage, "cannot sign an invalid message", err)
	}

	issuedAt := s.now().Unix()
	expiresAt, err := msg.ExpiresAt(issuedAt)
	if err != nil {
		return message.SignedMessage{}, newError(KindInvalidMessage, "cannot sign an invalid message", err)
	}

	jti, err := newJTI(s.random)
	if err != nil {
		return message.SignedMessage{}, newError(KindSigning, "cannot generate envelope identifier", err)
	}

	logger := s.logger.WithFields(map[string]interface{}{
		"jti":       jti,
		"operation": msg.Operation,
		"audience":  msg.Audience,
	})

	claims := s.claims(msg, jti, issuedAt, expiresAt, logger)

	tokenEnvelope, err := s.signTokenEnvelope(claims)
	if err != nil {
		return message.SignedMessage{}, err
	}

	var body string
	if msg.HasBody() {
		body, err = s.signBody(msg, jti)
		if err != nil {
			return message.SignedMessage{}, err
		}
	}

	logger.Debug("signed message (body: %t)", msg.HasBody())
	return message.SignedMessage{
		TokenEnvelope: tokenEnvelope,
		Body:          body,
	}, nil
}

// claims builds the token claim set. Custom claims are applied first and
// reserved claims overwrite them, so a reserved name always carries the
// signer's value.
func (s *Signer) claims(msg message.Message, jti string, issuedAt, expiresAt int64, logger logging.Logger) map[string]interface{} {
	claims := make(map[string]interface{}, len(msg.CustomClaims)+9)

	names := make([]string, 0, len(msg.CustomClaims))
	for name := range msg.CustomClaims {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if message.ReservedClaim(name) {
			logger.WithField("claim", name).Warn("dropping custom claim with reserved name")
			continue
		}
		claims[name] = msg.CustomClaims[name]
	}

	claims[message.ClaimJWTID] = jti
	claims[message.ClaimIssuer] = s.issuer
	claims[message.ClaimAudience] = msg.Audience
	claims[message.ClaimIssuedAt] = issuedAt
	claims[message.ClaimExpiry] = expiresAt
	claims[message.ClaimOperation] = msg.Operation
	if msg.InitialToken != "" {
		claims[message.ClaimInitialToken] = msg.InitialToken
	}
	if msg.ParentToken != "" {
		claims[message.ClaimParentToken] = msg.ParentToken
	}
	if msg.HasBody() {
		claims[message.ClaimHasBody] = true
	}
	return claims
}

// signTokenEnvelope signs claims as a JWT and wraps the compact JWT in an
// outer JWS.
func (s *Signer) signTokenEnvelope(claims map[string]interface{}) (string, error) {
	inner, err := s.signing.NewSigner((&jose.SignerOptions{}).WithType(message.TypeJWT))
	if err != nil {
		return "", newError(KindSigning, "cannot create JWT signer", err)
	}
	token, err := jwt.Signed(inner).Claims(claims).Serialize()
	if err != nil {
		return "", newError(KindSigning, "cannot sign JWT", err)
	}

	outerOpts := (&jose.SignerOptions{}).
		WithType(message.TypeJOSE).
		WithContentType(message.ContentTypeJWT).
		WithHeader(jose.HeaderKey("kid"), s.issuer)
	outer, err := s.signing.NewSigner(outerOpts)
	if err != nil {
		return "", newError(KindSigning, "cannot create JWS envelope signer", err)
	}
	return signCompact(outer, []byte(token), "cannot sign JWS envelope for JWT")
}

// signBody signs the raw body. The identifier goes in the protected header
// because the payload is opaque bytes.
func (s *Signer) signBody(msg message.Message, jti string) (string, error) {
	opts := (&jose.SignerOptions{}).
		WithType(message.TypeJOSE).
		WithContentType(jose.ContentType(msg.ContentType)).
		WithHeader(jose.HeaderKey(message.HeaderJWTID), jti)
	signer, err := s.signing.NewSigner(opts)
	if err != nil {
		return "", newError(KindSigning, "cannot create JWS body signer", err)
	}
	return signCompact(signer, msg.Body, "cannot sign JWS body")
}

func signCompact(signer jose.Signer, payload []byte, what string) (string, error) {
	obj, err := signer.Sign(payload)
	if err != nil {
		return "", newError(KindSigning, what, err)
	}
	compact, err := obj.CompactSerialize()
	if err != nil {
		return "", newError(KindSigning, what, err)
	}
	return compact, nil
}
