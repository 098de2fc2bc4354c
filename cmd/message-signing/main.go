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

package main

import (
	"context"
	"log"
	"time"

	"github.com/sigstore/message-signing/cmd/message-signing/cli"
	"github.com/sigstore/message-signing/pkg/tracing"
)

const serviceName = "message-signing"

func main() {
	log.SetFlags(0)

	if err := tracing.InitFromEnv(serviceName); err != nil {
		log.Printf("warning: tracing disabled: %v", err)
	}

	err := cli.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if shutdownErr := tracing.Shutdown(ctx); shutdownErr != nil {
		log.Printf("warning: flushing traces: %v", shutdownErr)
	}
	cancel()

	if err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
