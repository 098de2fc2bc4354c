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

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sigstore/message-signing/cmd/message-signing/cli/options"
	"github.com/sigstore/message-signing/pkg/envelope"
	"github.com/sigstore/message-signing/pkg/logging"
)

// Sign returns the sign command.
func Sign(ro *options.RootOptions) *cobra.Command {
	o := &options.SignOptions{}

	cmd := &cobra.Command{
		Use:   "sign [OPTIONS]",
		Short: "Sign a message.",
		Long: `Sign a message.

    Generates an ephemeral key pair for ISSUER and signs the message into a
    token envelope and, when a body is given, a body envelope sharing the
    same jti. The result is printed as JSON:

        {"token_envelope": "...", "body": "..."}

    The message can be given with flags or as a YAML or JSON document via
    --message; flags set on the command line override document values.
    Receivers need the public key to verify the envelopes; write it with
    --public-key-out.`,
		Example: `  message-signing sign --issuer svc-a --operation transfer --audience svc-b \
      --ttl 60 --body 42 --content-type text/plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs := ro.NewObservability(cmd.ErrOrStderr())

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			return runSign(ctx, cmd, o, obs)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func runSign(ctx context.Context, cmd *cobra.Command, o *options.SignOptions, obs options.Observability) error {
	logger := obs.Logger

	if err := o.Validate(); err != nil {
		return err
	}

	msg, err := o.ToMessage(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}

	keyOpts, err := o.ToKeyOptions()
	if err != nil {
		return err
	}

	signer, err := envelope.NewSigner(o.Issuer,
		envelope.WithKeyOptions(keyOpts),
		envelope.WithLogger(logger))
	if err != nil {
		return err
	}

	if o.PublicKeyOut != "" {
		pemStr, err := signer.PublicKeyPEM()
		if err != nil {
			return fmt.Errorf("failed to encode public key: %w", err)
		}
		if err := os.WriteFile(o.PublicKeyOut, []byte(pemStr), 0o644); err != nil {
			return fmt.Errorf("failed to write public key to %s: %w", o.PublicKeyOut, err)
		}
		logger.Info("wrote public key to %s", o.PublicKeyOut)
	}

	if msg.InitialToken != "" || msg.ParentToken != "" {
		logger.Debug("chaining tokens initial=%s parent=%s",
			logging.MaskToken(msg.InitialToken), logging.MaskToken(msg.ParentToken))
	}

	signed, err := signer.SignContext(ctx, msg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(signed); err != nil {
		return fmt.Errorf("failed to write signed message: %w", err)
	}

	logger.Info("signed %s message for %s (alg %s, body %t)",
		msg.Operation, msg.Audience, signer.SignatureAlgorithm(), signed.HasBody())
	return nil
}
