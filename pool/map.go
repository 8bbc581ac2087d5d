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

// MapFunc transforms one source item into one result. An error fails the
// item under FailFast, or is reported to Config.Sink and the item dropped
// under ContinueOnError.
type MapFunc[T, U any] func(ctx context.Context, value T) (U, error)

// Map runs fn over every item src yields, up to cfg.MaxConcurrency at
// once, and returns a channel of the results. If cfg.PreserveOrder is
// set, results arrive in src's original order regardless of completion
// order; otherwise they arrive in completion order.
//
// The returned channel is always closed once src is exhausted (or the
// derived context is cancelled) and every in-flight worker has returned.
func Map[T, U any](ctx context.Context, cfg *Config, src item.Source[T], fn MapFunc[T, U]) <-chan item.Item[U] {
	w := func(ctx context.Context, idx uint64, v T) ([]merge.Entry[U], error) {
		result, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}
		return []merge.Entry[U]{{Key: merge.Key{Index: idx}, Value: result}}, nil
	}
	return run[T, U](ctx, cfg, src, false, w)
}
