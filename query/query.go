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

package query

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/token"
)

// Query is a lazy operator chain over T: every With*/Map/Filter/FlatMap/Take
// call returns a new *Query wrapping a copied Settings (the SP invariant),
// without touching anything that runs. The chain is only realized — a
// token.Token composed, pool dispatchers spawned, merge coordinators
// started where ordered — when Enumerate or ToSlice is called, modeled on
// the teacher's functional-options chains (cfgloader.Option,
// cli.FlagSet's NewSection/*Var builders) generalized from "build a
// config" to "build a pipeline."
type Query[T any] struct {
	settings Settings
	build    func(ctx context.Context) (item.Source[T], error)

	// consumed is shared by every Query derived from the same origin, so
	// realizing any one of them (even a branch taken before the final
	// With* call) consumes the whole chain — a Query is single-use, per
	// §4.5.
	consumed *int32
}

// New wraps src as the origin of a new Query.
func New[T any](src item.Source[T]) *Query[T] {
	return &Query[T]{
		settings: DefaultSettings(),
		build: func(ctx context.Context) (item.Source[T], error) {
			return &boundSource[T]{upstream: src, ctx: ctx}, nil
		},
		consumed: new(int32),
	}
}

// boundSource binds a Source to the context Enumerate composed, so the
// engine's cancellation/timeout semantics apply uniformly even for an
// origin source whose own Next implementation would otherwise only see
// whatever context a caller happens to pass to Next directly.
type boundSource[T any] struct {
	upstream item.Source[T]
	ctx      context.Context
}

// Next implements item.Source.
func (s *boundSource[T]) Next(_ context.Context) (T, bool, error) {
	return s.upstream.Next(s.ctx)
}

func (q *Query[T]) clone() *Query[T] {
	c := *q
	return &c
}

// WithMaxConcurrency overrides the number of in-flight operations per
// stage.
func (q *Query[T]) WithMaxConcurrency(n int) *Query[T] {
	c := q.clone()
	c.settings.MaxConcurrency = n
	return c
}

// WithBufferSize overrides each stage's output channel capacity.
func (q *Query[T]) WithBufferSize(n int) *Query[T] {
	c := q.clone()
	c.settings.BufferSize = n
	return c
}

// WithPreserveOrder overrides whether stage completions are reassembled
// into source order.
func (q *Query[T]) WithPreserveOrder(v bool) *Query[T] {
	c := q.clone()
	c.settings.PreserveOrder = v
	return c
}

// WithContinueOnError overrides the item-level failure policy.
func (q *Query[T]) WithContinueOnError(v bool) *Query[T] {
	c := q.clone()
	c.settings.ContinueOnError = v
	return c
}

// WithTimeout tightens the deadline attached at Enumerate/ToSlice time: a
// chained call takes the minimum of the existing timeout and d, never the
// new value outright, so the deadline can only ever get stricter.
// NoTimeout (0) is treated as +Inf on both sides, so the first WithTimeout
// call on a fresh Query always wins.
func (q *Query[T]) WithTimeout(d time.Duration) *Query[T] {
	c := q.clone()
	switch {
	case c.settings.Timeout == 0:
		c.settings.Timeout = d
	case d == 0:
		// existing timeout stands.
	case d < c.settings.Timeout:
		c.settings.Timeout = d
	}
	return c
}

// WithCancellation links a new external token alongside whatever previous
// WithCancellation calls already contributed, rather than replacing them,
// so every linked token still cancels the pipeline when it fires. The
// actual linkage (and its Release) is deferred to Enumerate/ToSlice time.
func (q *Query[T]) WithCancellation(t token.Token) *Query[T] {
	c := q.clone()
	prev := c.settings.Cancellations
	next := make([]token.Token, len(prev)+1)
	copy(next, prev)
	next[len(prev)] = t
	c.settings.Cancellations = next
	return c
}

// WithMode overrides the execution model. Selecting anything other than
// AsyncParallel/AsyncSequential is accepted here but rejected once the
// Query is realized.
func (q *Query[T]) WithMode(m Mode) *Query[T] {
	c := q.clone()
	c.settings.Mode = m
	return c
}

// WithSink overrides where item-level failures are reported under
// ContinueOnError.
func (q *Query[T]) WithSink(sink errs.Sink) *Query[T] {
	c := q.clone()
	c.settings.Sink = sink
	return c
}

// WithSettings replaces the whole Settings value in one call, for callers
// that built one via config.Load.
func (q *Query[T]) WithSettings(s Settings) *Query[T] {
	c := q.clone()
	c.settings = s
	return c
}

// Settings returns the Query's current Settings.
func (q *Query[T]) Settings() Settings {
	return q.settings
}

func (q *Query[T]) markConsumed() bool {
	return atomic.CompareAndSwapInt32(q.consumed, 0, 1)
}
