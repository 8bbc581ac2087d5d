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

// Package item defines the envelope that flows through every stage of the
// query engine, and the Source contract that external producers (readers,
// generators, test fixtures) implement to feed it.
package item

import "context"

// Item is the unit carried between pipeline stages: a payload paired with
// its monotonically increasing source position. The index is what lets
// [github.com/abcxyz/apqe/merge] restore source order after concurrent,
// possibly out-of-order completion.
type Item[T any] struct {
	Payload T
	Index   uint64
}

// New wraps a payload at the given source index.
func New[T any](payload T, index uint64) Item[T] {
	return Item[T]{Payload: payload, Index: index}
}

// Source is a pull-based, possibly-infinite sequence of T. Next returns
// io.EOF-shaped termination via the ok return: ok is false once the source
// is exhausted, with err nil on a clean end and non-nil on failure.
//
// Implementations that do not themselves respect ctx cancellation are still
// safe to use: callers of Source are required to stop invoking Next once ctx
// is done, per the cancellation-responsiveness rule in the query engine's
// dispatcher loop.
type Source[T any] interface {
	Next(ctx context.Context) (value T, ok bool, err error)
}

// SourceFunc adapts a plain function to a [Source], for sources that need no
// extra state (e.g. a closure over a slice index).
type SourceFunc[T any] func(ctx context.Context) (T, bool, error)

// Next implements [Source].
func (f SourceFunc[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

// FromSlice returns a [Source] that yields the elements of s in order, then
// terminates cleanly. It is the standard fixture for tests and examples.
func FromSlice[T any](s []T) Source[T] {
	i := 0
	return SourceFunc[T](func(ctx context.Context) (T, bool, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		if i >= len(s) {
			return zero, false, nil
		}
		v := s[i]
		i++
		return v, true, nil
	})
}
