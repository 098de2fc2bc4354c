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

// Package cli implements the message-signing command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/sigstore/message-signing/cmd/message-signing/cli/options"
)

// Execute builds the root command and runs it with os.Args. The
// --output-file handle is closed whether or not the command succeeds.
func Execute() error {
	cmd, out := newRoot()
	return run(cmd, out)
}

func run(cmd *cobra.Command, out *outputFile) (err error) {
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing output file: %w", closeErr)
		}
	}()
	return cmd.Execute()
}

// outputFile is the --output-file opened by a run, if any.
type outputFile struct {
	f *os.File
}

func (o *outputFile) open(path string) (*os.File, error) {
	if err := options.NewPathValidator("output-file", path, options.PathOutput).Validate(); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file %s: %w", path, err)
	}
	o.f = f
	return f, nil
}

// Close closes the file if one was opened.
func (o *outputFile) Close() error {
	if o.f == nil {
		return nil
	}
	return o.f.Close()
}

func newRoot() (*cobra.Command, *outputFile) {
	ro := &options.RootOptions{}
	out := &outputFile{}

	cmd := &cobra.Command{
		Use:               "message-signing",
		Short:             "Sign service-to-service messages as nested JWS envelopes.",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if ro.OutputFile == "" {
				return nil
			}
			f, err := out.open(ro.OutputFile)
			if err != nil {
				return err
			}
			cmd.SetOut(f)
			return nil
		},
	}
	ro.AddFlags(cmd)

	// Add sub-commands.
	cmd.AddCommand(Sign(ro))
	cmd.AddCommand(version.WithFont("starwars"))
	return cmd, out
}
