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

// FlatMapFunc expands one source item into zero or more results. An
// error fails the whole item under FailFast, or is reported and the
// item's whole sub-sequence dropped under ContinueOnError.
type FlatMapFunc[T, U any] func(ctx context.Context, value T) ([]U, error)

// FlatMap runs fn over every item src yields and flattens the resulting
// sub-sequences into a single channel. Each source item's sub-sequence
// keeps its own relative order; under cfg.PreserveOrder, whole
// sub-sequences are also emitted in src's original order, per the merge
// package's (index, sub-index) key scheme.
//
// Internally every sub-item is tagged with a [Case] before being folded
// into a merge.Entry, so the end-of-sub-sequence sentinel is recognized
// by category rather than a sentinel value check against the payload.
func FlatMap[T, U any](ctx context.Context, cfg *Config, src item.Source[T], fn FlatMapFunc[T, U]) <-chan item.Item[U] {
	w := func(ctx context.Context, idx uint64, v T) ([]merge.Entry[U], error) {
		values, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}

		cases := make([]Case[U], 0, len(values)+1)
		for _, val := range values {
			cases = append(cases, Case[U]{Category: CaseValue, Payload: val})
		}
		cases = append(cases, Case[U]{Category: CaseEnd})

		entries := make([]merge.Entry[U], 0, len(cases))
		for sub, c := range cases {
			if c.Category == CaseEnd {
				entries = append(entries, merge.Entry[U]{
					Key:  merge.Key{Index: idx, Sub: merge.SubEnd},
					Skip: true,
				})
				continue
			}
			entries = append(entries, merge.Entry[U]{
				Key:   merge.Key{Index: idx, Sub: uint64(sub)},
				Value: c.Payload,
			})
		}
		return entries, nil
	}
	return run[T, U](ctx, cfg, src, true, w)
}
