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
	"github.com/abcxyz/apqe/merge"
)

// FilterFunc reports whether value should pass through. An error fails
// the item under FailFast, or is reported and the item dropped under
// ContinueOnError — identically to a predicate returning false, except
// the drop is recorded as an error event rather than silent.
type FilterFunc[T any] func(ctx context.Context, value T) (bool, error)

// Filter runs fn over every item src yields, emitting only the ones fn
// keeps. Concurrency, ordering, and channel-close semantics match [Map].
func Filter[T any](ctx context.Context, cfg *Config, src item.Source[T], fn FilterFunc[T]) <-chan item.Item[T] {
	w := func(ctx context.Context, idx uint64, v T) ([]merge.Entry[T], error) {
		keep, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}
		if !keep {
			return []merge.Entry[T]{{Key: merge.Key{Index: idx}, Skip: true}}, nil
		}
		return []merge.Entry[T]{{Key: merge.Key{Index: idx}, Value: v}}, nil
	}
	return run[T, T](ctx, cfg, src, false, w)
}
