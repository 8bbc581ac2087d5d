// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pool implements the Bounded Worker Pool: a dispatcher/worker
// pair gated by a weighted semaphore, descended from the teacher's
// workerpool.Pool[T] but generalized from "collect a slice of results" to
// "stream an ordered or unordered channel of item.Item[U]".
package pool

import (
	"github.com/abcxyz/apqe/errs"
)

// MinBufferSize is the smallest BufferSize Config.Validate accepts. Callers
// that want "use the default" behavior apply it before calling Validate,
// the same way query.Settings resolves MaxConcurrency/BufferSize defaults
// before handing a Config to this package.
const MinBufferSize = 10

// Config gates one Map/Filter/FlatMap invocation. Unlike the teacher's
// workerpool.Config, zero values are never silently defaulted here —
// defaulting is the query layer's job (§7 InputValidation); Validate
// rejects an under-specified Config outright so the failure surfaces at
// the boundary the caller controls.
type Config struct {
	// MaxConcurrency is the number of workers allowed in flight at once.
	MaxConcurrency int

	// BufferSize sizes the output (and, when PreserveOrder is set, the
	// merge input) channel.
	BufferSize int

	// PreserveOrder routes completions through merge.Run instead of
	// writing them to the output channel directly.
	PreserveOrder bool

	// ContinueOnError reports user-function and source failures to Sink
	// and drops the offending item instead of cancelling the run.
	ContinueOnError bool

	// Sink receives UserFunctionFailure/SourceFailure events under
	// ContinueOnError. A nil Sink discards events.
	Sink errs.Sink
}

// Validate checks the Config against the engine's invariants.
func (c *Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return errs.ErrInvalidConcurrency
	}
	if c.BufferSize < MinBufferSize {
		return errs.ErrInvalidBufferSize
	}
	return nil
}

func (c *Config) sink() errs.Sink {
	if c.Sink == nil {
		return errs.NopSink{}
	}
	return c.Sink
}
