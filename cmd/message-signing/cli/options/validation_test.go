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
	"os"
	"path/filepath"
	"testing"
)

func TestPathValidator(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "msg.yaml")
	if err := os.WriteFile(file, []byte("operation: ping\n"), 0o600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		role    PathRole
		wantErr bool
	}{
		{name: "empty input", path: "", role: PathInput},
		{name: "stdin input", path: "-", role: PathInput},
		{name: "existing input", path: file, role: PathInput},
		{name: "missing input", path: filepath.Join(dir, "nope"), role: PathInput, wantErr: true},
		{name: "directory input", path: dir, role: PathInput, wantErr: true},
		{name: "empty output", path: "", role: PathOutput},
		{name: "new output", path: filepath.Join(dir, "key.pem"), role: PathOutput},
		{name: "existing output", path: file, role: PathOutput},
		{name: "output in missing directory", path: filepath.Join(dir, "nope", "key.pem"), role: PathOutput, wantErr: true},
		{name: "output under a file", path: filepath.Join(file, "key.pem"), role: PathOutput, wantErr: true},
		{name: "directory output", path: dir, role: PathOutput, wantErr: true},
		{name: "unknown role", path: file, role: PathRole(9), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPathValidator("flag", tt.path, tt.role).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignOptions_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    SignOptions
		wantErr bool
	}{
		{name: "no paths", opts: SignOptions{}},
		{name: "stdin body", opts: SignOptions{BodyPath: "-"}},
		{name: "both stdin", opts: SignOptions{BodyPath: "-", MessagePath: "-"}, wantErr: true},
		{name: "missing message", opts: SignOptions{MessagePath: filepath.Join(dir, "m.yaml")}, wantErr: true},
		{
			name:    "public key in missing directory",
			opts:    SignOptions{KeyFlags: KeyFlags{PublicKeyOut: filepath.Join(dir, "x", "k.pem")}},
			wantErr: true,
		},
		{name: "public key output", opts: SignOptions{KeyFlags: KeyFlags{PublicKeyOut: filepath.Join(dir, "k.pem")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
