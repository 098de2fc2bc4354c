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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sigstore/message-signing/pkg/message"
)

// DefaultTTL is the token lifetime in seconds when none is given.
const DefaultTTL = 300

// stdinPath makes --body-file and --message read from stdin.
const stdinPath = "-"

// MessageDocument is a message in a YAML or JSON file. JSON documents are
// read by the YAML decoder. A nil TTL means the document does not set one.
type MessageDocument struct {
	Operation    string                 `yaml:"operation"`
	Audience     string                 `yaml:"audience"`
	TTL          *int64                 `yaml:"ttl"`
	InitialToken string                 `yaml:"initial_token"`
	ParentToken  string                 `yaml:"parent_token"`
	Claims       map[string]interface{} `yaml:"claims"`
	Body         *string                `yaml:"body"`
	ContentType  string                 `yaml:"content_type"`
}

// DecodeMessageDocument parses a YAML or JSON message document. Unknown
// fields are rejected.
func DecodeMessageDocument(data []byte) (MessageDocument, error) {
	var doc MessageDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return MessageDocument{}, nil
		}
		return MessageDocument{}, fmt.Errorf("failed to decode message document: %w", err)
	}
	return doc, nil
}

// ToMessage converts the document to a message.
func (d MessageDocument) ToMessage() message.Message {
	m := message.Message{
		Operation:    d.Operation,
		Audience:     d.Audience,
		InitialToken: d.InitialToken,
		ParentToken:  d.ParentToken,
		ContentType:  d.ContentType,
	}
	if d.TTL != nil {
		m.TTLSeconds = *d.TTL
	}
	if len(d.Claims) > 0 {
		m.CustomClaims = make(map[string]interface{}, len(d.Claims))
		for k, v := range d.Claims {
			m.CustomClaims[k] = v
		}
	}
	if d.Body != nil {
		m.Body = []byte(*d.Body)
	}
	return m
}

// SignOptions holds the flags of the sign command.
type SignOptions struct {
	KeyFlags

	Issuer       string            // --issuer (required)
	MessagePath  string            // --message
	Operation    string            // --operation
	Audience     string            // --audience
	TTL          int64             // --ttl
	InitialToken string            // --initial-token
	ParentToken  string            // --parent-token
	Claims       map[string]string // --claim
	Body         string            // --body
	BodyPath     string            // --body-file
	ContentType  string            // --content-type
}

var _ FlagAdder = (*SignOptions)(nil)

// AddFlags adds sign flags to the cobra command.
func (o *SignOptions) AddFlags(cmd *cobra.Command) {
	o.KeyFlags.AddFlags(cmd)

	cmd.Flags().StringVar(&o.Issuer, "issuer", "", "Identity of the signing service; also the envelope key id. [required]")
	_ = cmd.MarkFlagRequired("issuer")

	cmd.Flags().StringVar(&o.MessagePath, "message", "", "Read the message from a YAML or JSON file (- for stdin). Flags override its values.")
	_ = cmd.MarkFlagFilename("message", "yaml", "yml", "json")

	cmd.Flags().StringVar(&o.Operation, "operation", "", "Operation name carried in the token.")
	cmd.Flags().StringVar(&o.Audience, "audience", "", "Intended recipient of the message.")
	cmd.Flags().Int64Var(&o.TTL, "ttl", DefaultTTL, "Token lifetime in seconds.")
	cmd.Flags().StringVar(&o.InitialToken, "initial-token", "", "Token that started the call chain.")
	cmd.Flags().StringVar(&o.ParentToken, "parent-token", "", "Token of the immediate caller.")
	cmd.Flags().StringToStringVar(&o.Claims, "claim", nil, "Custom claim as key=value; repeatable.")
	cmd.Flags().StringVar(&o.Body, "body", "", "Message body.")
	cmd.Flags().StringVar(&o.BodyPath, "body-file", "", "Read the message body from a file (- for stdin).")
	cmd.Flags().StringVar(&o.ContentType, "content-type", "", "Media type of the body; required with a body.")

	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// Validate checks the path flags. Only one of --message and --body-file
// may read stdin.
func (o *SignOptions) Validate() error {
	if o.MessagePath == stdinPath && o.BodyPath == stdinPath {
		return fmt.Errorf("--message and --body-file cannot both read stdin")
	}
	return ValidatePaths(
		NewPathValidator("message", o.MessagePath, PathInput),
		NewPathValidator("body-file", o.BodyPath, PathInput),
		NewPathValidator("public-key-out", o.PublicKeyOut, PathOutput),
	)
}

// ToMessage builds the message to sign: the --message document first, then
// every flag set on cmd on top of it. stdin is used for "-" paths.
func (o *SignOptions) ToMessage(cmd *cobra.Command, stdin io.Reader) (message.Message, error) {
	var doc MessageDocument
	if o.MessagePath != "" {
		data, err := readPath(o.MessagePath, stdin)
		if err != nil {
			return message.Message{}, fmt.Errorf("failed to read message %s: %w", o.MessagePath, err)
		}
		doc, err = DecodeMessageDocument(data)
		if err != nil {
			return message.Message{}, err
		}
	}
	if doc.TTL == nil {
		ttl := o.TTL
		doc.TTL = &ttl
	}

	flags := cmd.Flags()
	if flags.Changed("operation") {
		doc.Operation = o.Operation
	}
	if flags.Changed("audience") {
		doc.Audience = o.Audience
	}
	if flags.Changed("ttl") {
		ttl := o.TTL
		doc.TTL = &ttl
	}
	if flags.Changed("initial-token") {
		doc.InitialToken = o.InitialToken
	}
	if flags.Changed("parent-token") {
		doc.ParentToken = o.ParentToken
	}
	if flags.Changed("content-type") {
		doc.ContentType = o.ContentType
	}
	if len(o.Claims) > 0 {
		if doc.Claims == nil {
			doc.Claims = make(map[string]interface{}, len(o.Claims))
		}
		for k, v := range o.Claims {
			doc.Claims[k] = v
		}
	}

	switch {
	case flags.Changed("body"):
		body := o.Body
		doc.Body = &body
	case o.BodyPath != "":
		data, err := readPath(o.BodyPath, stdin)
		if err != nil {
			return message.Message{}, fmt.Errorf("failed to read body %s: %w", o.BodyPath, err)
		}
		body := string(data)
		doc.Body = &body
	}

	return doc.ToMessage(), nil
}

func readPath(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
