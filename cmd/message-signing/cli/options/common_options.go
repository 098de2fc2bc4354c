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

package options

import (
	"github.com/spf13/cobra"

	"github.com/sigstore/message-signing/pkg/keys"
)

// FlagAdder is implemented by any flag group that can register itself to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// KeyFlags select the ephemeral key pair generated for a signing run.
type KeyFlags struct {
	// Algorithm is the key family: rsa, ecdsa or ed25519.
	Algorithm string
	// KeySize is the RSA modulus size in bits.
	KeySize int
	// PublicKeyOut is where the public key PEM is written, if set.
	PublicKeyOut string
}

// AddFlags adds key selection flags to the cobra command.
func (o *KeyFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Algorithm, "algorithm", string(keys.AlgorithmRSA),
		"Signing key algorithm (rsa, ecdsa, ed25519).")
	cmd.Flags().IntVar(&o.KeySize, "key-size", keys.DefaultRSABits,
		"RSA key size in bits. Ignored for other algorithms.")
	cmd.Flags().StringVar(&o.PublicKeyOut, "public-key-out", "",
		"Write the generated public key, PEM encoded, to this file.")
	_ = cmd.MarkFlagFilename("public-key-out", "pem", "pub")
}

// ToKeyOptions converts the flags to key generation options.
func (o *KeyFlags) ToKeyOptions() (keys.Options, error) {
	alg, err := keys.ParseAlgorithm(o.Algorithm)
	if err != nil {
		return keys.Options{}, err
	}
	return keys.Options{Algorithm: alg, Bits: o.KeySize}, nil
}

// AddAllFlags is a helper function to register multiple flag groups at once.
func AddAllFlags(cmd *cobra.Command, flagGroups ...FlagAdder) {
	for _, fg := range flagGroups {
		fg.AddFlags(cmd)
	}
}
