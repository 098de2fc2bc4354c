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

// Package keys owns the ephemeral key pair used to sign message envelopes.
//
// A Material is generated eagerly and lives as long as the signer that owns
// it. The public half is exposed for distribution; the private half never
// leaves this package and is only reachable through NewSigner.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// Algorithm names a key family.
type Algorithm string

const (
	// AlgorithmRSA generates RSA keys and signs with RS256.
	AlgorithmRSA Algorithm = "rsa"
	// AlgorithmECDSA generates P-256 keys and signs with ES256.
	AlgorithmECDSA Algorithm = "ecdsa"
	// AlgorithmEd25519 generates Ed25519 keys and signs with EdDSA.
	AlgorithmEd25519 Algorithm = "ed25519"
)

const (
	// DefaultRSABits is the modulus size used when Options.Bits is zero.
	DefaultRSABits = 2048
	// MinRSABits is the smallest accepted RSA modulus.
	MinRSABits = 2048
)

// ParseAlgorithm parses a case-insensitive algorithm name.
// An empty string selects AlgorithmRSA.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rsa", "rs256":
		return AlgorithmRSA, nil
	case "ecdsa", "ec", "es256":
		return AlgorithmECDSA, nil
	case "ed25519", "eddsa":
		return AlgorithmEd25519, nil
	default:
		return "", fmt.Errorf("unsupported key algorithm: %q", s)
	}
}

// Options configures key generation.
type Options struct {
	// Algorithm selects the key family. Defaults to AlgorithmRSA.
	Algorithm Algorithm
	// Bits is the RSA modulus size. Ignored for other families.
	Bits int
}

// DefaultOptions returns RSA 2048 options.
func DefaultOptions() Options {
	return Options{
		Algorithm: AlgorithmRSA,
		Bits:      DefaultRSABits,
	}
}

// Material holds one asymmetric key pair.
type Material struct {
	algorithm  Algorithm
	jwsAlg     jose.SignatureAlgorithm
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	hint       string
}

// Generate creates a fresh key pair.
func Generate(opts Options) (*Material, error) {
	alg := opts.Algorithm
	if alg == "" {
		alg = AlgorithmRSA
	}

	var (
		signer crypto.Signer
		jwsAlg jose.SignatureAlgorithm
		err    error
	)
	switch alg {
	case AlgorithmRSA:
		bits := opts.Bits
		if bits == 0 {
			bits = DefaultRSABits
		}
		if bits < MinRSABits {
			return nil, fmt.Errorf("RSA key size %d is below the minimum of %d bits", bits, MinRSABits)
		}
		signer, err = rsa.GenerateKey(rand.Reader, bits)
		jwsAlg = jose.RS256
	case AlgorithmECDSA:
		signer, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		jwsAlg = jose.ES256
	case AlgorithmEd25519:
		_, signer, err = ed25519.GenerateKey(rand.Reader)
		jwsAlg = jose.EdDSA
	default:
		return nil, fmt.Errorf("unsupported key algorithm: %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key pair: %w", alg, err)
	}

	return newMaterial(alg, jwsAlg, signer)
}

func newMaterial(alg Algorithm, jwsAlg jose.SignatureAlgorithm, signer crypto.Signer) (*Material, error) {
	pub := signer.Public()
	hint, err := ComputeKeyHint(pub)
	if err != nil {
		return nil, err
	}
	return &Material{
		algorithm:  alg,
		jwsAlg:     jwsAlg,
		privateKey: signer,
		publicKey:  pub,
		hint:       hint,
	}, nil
}

// Algorithm returns the key family.
func (m *Material) Algorithm() Algorithm {
	return m.algorithm
}

// SignatureAlgorithm returns the JWS "alg" value used with this key.
func (m *Material) SignatureAlgorithm() jose.SignatureAlgorithm {
	return m.jwsAlg
}

// PublicKey returns the public key.
func (m *Material) PublicKey() crypto.PublicKey {
	return m.publicKey
}

// PublicKeyPEM returns the public key as a PKIX PEM block.
func (m *Material) PublicKeyPEM() (string, error) {
	pemBytes, err := cryptoutils.MarshalPublicKeyToPEM(m.publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key to PEM: %w", err)
	}
	return string(pemBytes), nil
}

// Hint returns the hex SHA-256 fingerprint of the PEM public key.
func (m *Material) Hint() string {
	return m.hint
}

// NewSigner returns a JWS signer bound to the private key.
// opts may be nil.
func (m *Material) NewSigner(opts *jose.SignerOptions) (jose.Signer, error) {
	if m == nil || m.privateKey == nil {
		return nil, fmt.Errorf("key material is not initialized")
	}
	return jose.NewSigner(jose.SigningKey{Algorithm: m.jwsAlg, Key: m.privateKey}, opts)
}

// ComputeKeyHint computes the hex SHA-256 of the PEM-encoded public key.
func ComputeKeyHint(pubKey crypto.PublicKey) (string, error) {
	pubKeyPEM, err := cryptoutils.MarshalPublicKeyToPEM(pubKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key to PEM: %w", err)
	}
	sum := sha256.Sum256(pubKeyPEM)
	return hex.EncodeToString(sum[:]), nil
}
