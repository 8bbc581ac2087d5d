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

package pool

import (
	"context"

	"github.com/abcxyz/apqe/item"
)

// chanSource adapts a channel of item.Item[T], as produced by Map, Filter,
// or FlatMap, back into an item.Source[T] so one stage's output can feed
// the next stage's dispatcher without materializing a slice in between.
type chanSource[T any] struct {
	ch <-chan item.Item[T]
}

// FromChannel wraps ch as an item.Source[T]. The wrapped source's index
// sequence starts fresh at each stage (§4.5's per-stage index rule), so
// callers should not rely on the wrapped Next's implicit position matching
// ch's original item.Item.Index values.
func FromChannel[T any](ch <-chan item.Item[T]) item.Source[T] {
	return &chanSource[T]{ch: ch}
}

// Next implements item.Source.
func (s *chanSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case it, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return it.Payload, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}
