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
	"crypto/rand"
	"io"
	"time"

	"github.com/trickstertwo/xclock"

	"github.com/sigstore/message-signing/pkg/keys"
	"github.com/sigstore/message-signing/pkg/logging"
)

// Option configures a Signer.
type Option func(*config)

type config struct {
	keyOpts keys.Options
	random  io.Reader
	now     func() time.Time
	logger  logging.Logger
}

func defaultConfig() config {
	return config{
		keyOpts: keys.DefaultOptions(),
		random:  rand.Reader,
		now:     xclock.Default().Now,
		logger:  logging.Discard(),
	}
}

// WithKeyOptions selects the key family and size generated for the signer.
func WithKeyOptions(opts keys.Options) Option {
	return func(c *config) {
		c.keyOpts = opts
	}
}

// WithRandom sets the source of envelope identifiers. Reads are serialized,
// so r need not be safe for concurrent use. nil keeps crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(c *config) {
		if r != nil {
			c.random = &lockedReader{r: r}
		}
	}
}

// WithClock sets the time source for issued-at and expiry claims. The
// default is the process-wide xclock clock.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		c.logger = logging.EnsureLogger(l)
	}
}
