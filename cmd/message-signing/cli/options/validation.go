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
	"fmt"
	"os"
	"path/filepath"
)

// PathRole says how a command uses a path.
type PathRole int

const (
	// PathInput is read; it must be an existing regular file or "-".
	PathInput PathRole = iota
	// PathOutput is written; its directory must exist and the path
	// itself must not be a directory.
	PathOutput
)

// PathValidator checks one path flag before any work is done.
type PathValidator struct {
	flagName string
	path     string
	role     PathRole
}

// NewPathValidator returns a validator for the value of flagName.
func NewPathValidator(flagName, path string, role PathRole) *PathValidator {
	return &PathValidator{
		flagName: flagName,
		path:     path,
		role:     role,
	}
}

// Validate checks the path. An empty path is valid; the flag is optional.
func (v *PathValidator) Validate() error {
	if v.path == "" {
		return nil
	}
	switch v.role {
	case PathInput:
		return v.validateInput()
	case PathOutput:
		return v.validateOutput()
	default:
		return fmt.Errorf("--%s: unknown path role %d", v.flagName, v.role)
	}
}

func (v *PathValidator) validateInput() error {
	if v.path == stdinPath {
		return nil
	}
	info, err := os.Stat(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("--%s %q does not exist", v.flagName, v.path)
		}
		return fmt.Errorf("checking --%s %q: %w", v.flagName, v.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("--%s %q is a directory, expected file", v.flagName, v.path)
	}
	return nil
}

func (v *PathValidator) validateOutput() error {
	if info, err := os.Stat(v.path); err == nil && info.IsDir() {
		return fmt.Errorf("--%s %q is a directory, expected file", v.flagName, v.path)
	}
	dir := filepath.Dir(v.path)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("--%s: directory %q does not exist", v.flagName, dir)
		}
		return fmt.Errorf("checking --%s directory %q: %w", v.flagName, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--%s: %q is not a directory", v.flagName, dir)
	}
	return nil
}

// ValidatePaths runs every validator and returns the first failure.
func ValidatePaths(validators ...*PathValidator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
