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

// Package query implements the Query Operator Graph: a fluent, lazy
// builder over item.Source[T] that only spawns goroutines — composing a
// token.Token, instantiating pool.Config, wiring merge via pool — once
// Enumerate or ToSlice realizes the chain.
package query

import (
	"runtime"
	"time"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/pool"
	"github.com/abcxyz/apqe/token"
)

// NoTimeout is the Infinite sentinel for Settings.Timeout.
const NoTimeout time.Duration = 0

// Mode names the four execution models the design distinguishes, even
// though this module only realizes the async ones: a bounded worker pool
// is what makes AsyncParallel and AsyncSequential (MaxConcurrency=1)
// different from each other, while the synchronous variants would need
// an entirely different, non-pool-based engine this module does not
// implement.
type Mode int

const (
	// AsyncParallel is the default: a bounded worker pool processes
	// items concurrently.
	AsyncParallel Mode = iota

	// AsyncSequential is AsyncParallel with MaxConcurrency fixed at 1:
	// resolving Settings with this Mode overrides MaxConcurrency to 1.
	AsyncSequential

	// SyncSequential and SyncParallel are accepted by the builder but
	// rejected at Enumerate/ToSlice time with errs.ErrUnsupportedMode:
	// named extension points, not implemented engines.
	SyncSequential
	SyncParallel
)

// defaultBufferSize is used whenever BufferSize is left at its zero value.
const defaultBufferSize = 64

// Settings is the engine's ExecutionSettings: every tunable that governs
// how a Query realizes its operator chain. Settings is copied by value on
// every With* call (the SP invariant), so sharing a base Settings across
// several queries never lets one mutate another's view.
type Settings struct {
	// MaxConcurrency bounds in-flight operations per stage. Zero defaults
	// to the host's logical CPU count.
	MaxConcurrency int

	// BufferSize sizes each stage's output channel. Zero defaults to
	// defaultBufferSize.
	BufferSize int

	// PreserveOrder routes each stage's completions through the merge
	// coordinator instead of emitting them in completion order.
	PreserveOrder bool

	// ContinueOnError reports item-level failures to Sink and drops the
	// offending item instead of failing the whole query.
	ContinueOnError bool

	// Timeout bounds one Enumerate/ToSlice call. NoTimeout (zero) means
	// no internal deadline is attached.
	Timeout time.Duration

	// Cancellations are the external tokens linked alongside Timeout and
	// the per-call token passed to Enumerate/ToSlice. Each chained
	// WithCancellation call appends to this slice rather than replacing
	// it, so every linked token still fires the composed cancellation;
	// an empty slice behaves as token.Background().
	Cancellations []token.Token

	// Sink receives UserFunctionFailure/SourceFailure events under
	// ContinueOnError. A nil Sink discards them.
	Sink errs.Sink

	// Mode selects the execution model. The zero value, AsyncParallel,
	// and AsyncSequential are what the operators realize; SyncSequential and
	// SyncParallel are accepted here but rejected by Enumerate/ToSlice.
	Mode Mode
}

// supported reports whether Enumerate/ToSlice can realize this Mode.
func (m Mode) supported() bool {
	return m == AsyncParallel || m == AsyncSequential
}

// DefaultSettings returns the Settings a bare Query starts from: full
// host concurrency, order preserved, fail-fast, no timeout.
func DefaultSettings() Settings {
	return Settings{
		MaxConcurrency: defaultConcurrency(),
		BufferSize:     defaultBufferSize,
		PreserveOrder:  true,
	}
}

func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// resolved returns a copy of s with every zero-value tunable defaulted
// and MaxConcurrency set to 1 under AsyncSequential, ready to hand to
// pool.Config.Validate. Only exactly zero is treated as
// "use the default" — a negative value was requested deliberately and is
// left alone so Validate rejects it as input validation failure instead
// of silently defaulting it away.
func (s Settings) resolved() Settings {
	if s.MaxConcurrency == 0 {
		s.MaxConcurrency = defaultConcurrency()
	}
	if s.BufferSize == 0 {
		s.BufferSize = defaultBufferSize
	}
	if s.Mode == AsyncSequential {
		s.MaxConcurrency = 1
	}
	return s
}

// poolConfig builds the pool.Config this Settings implies.
func (s Settings) poolConfig() *pool.Config {
	return &pool.Config{
		MaxConcurrency:  s.MaxConcurrency,
		BufferSize:      s.BufferSize,
		PreserveOrder:   s.PreserveOrder,
		ContinueOnError: s.ContinueOnError,
		Sink:            s.Sink,
	}
}
