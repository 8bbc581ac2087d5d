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

	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/pool"
)

// Map and Filter/FlatMap are free functions rather than *Query[T] methods
// because Go forbids a method from introducing a type parameter the
// receiver doesn't already have — there is no way to write
// "func (q *Query[T]) Map[U any](...)". This mirrors the same constraint
// the teacher's generic helpers (slices.Map, slices.Reduce) work around
// by being free functions.

// Map appends a Map stage, transforming every T the chain yields into a
// U via fn, bounded by the chain's current Settings.
func Map[T, U any](q *Query[T], fn pool.MapFunc[T, U]) *Query[U] {
	settings := q.settings
	prevBuild := q.build

	return &Query[U]{
		settings: settings,
		consumed: q.consumed,
		build: func(ctx context.Context) (item.Source[U], error) {
			upstream, err := prevBuild(ctx)
			if err != nil {
				return nil, err
			}
			cfg := settings.resolved().poolConfig()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			out := pool.Map(ctx, cfg, upstream, fn)
			return pool.FromChannel(out), nil
		},
	}
}

// Filter appends a Filter stage, keeping only the T values fn accepts.
func Filter[T any](q *Query[T], fn pool.FilterFunc[T]) *Query[T] {
	settings := q.settings
	prevBuild := q.build

	return &Query[T]{
		settings: settings,
		consumed: q.consumed,
		build: func(ctx context.Context) (item.Source[T], error) {
			upstream, err := prevBuild(ctx)
			if err != nil {
				return nil, err
			}
			cfg := settings.resolved().poolConfig()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			out := pool.Filter(ctx, cfg, upstream, fn)
			return pool.FromChannel(out), nil
		},
	}
}

// FlatMap appends a FlatMap stage, expanding every T the chain yields
// into zero or more U values via fn.
func FlatMap[T, U any](q *Query[T], fn pool.FlatMapFunc[T, U]) *Query[U] {
	settings := q.settings
	prevBuild := q.build

	return &Query[U]{
		settings: settings,
		consumed: q.consumed,
		build: func(ctx context.Context) (item.Source[U], error) {
			upstream, err := prevBuild(ctx)
			if err != nil {
				return nil, err
			}
			cfg := settings.resolved().poolConfig()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			out := pool.FlatMap(ctx, cfg, upstream, fn)
			return pool.FromChannel(out), nil
		},
	}
}

// Take appends a stage that yields only the first n values the chain
// produces, then stops. Once the nth value has been pulled, Take cancels
// a context it derived and owns itself — never the caller's composed
// token — so upstream stages wind down cooperatively without the
// early-termination signal leaking past this Query (mirrors the pool's
// fail-fast ownership boundary in §4.2).
func Take[T any](q *Query[T], n int) *Query[T] {
	prevBuild := q.build

	return &Query[T]{
		settings: q.settings,
		consumed: q.consumed,
		build: func(ctx context.Context) (item.Source[T], error) {
			takeCtx, cancel := context.WithCancel(ctx)
			upstream, err := prevBuild(takeCtx)
			if err != nil {
				cancel()
				return nil, err
			}
			return &takeSource[T]{upstream: upstream, ctx: takeCtx, cancel: cancel, remaining: n}, nil
		},
	}
}

type takeSource[T any] struct {
	upstream  item.Source[T]
	ctx       context.Context
	cancel    context.CancelFunc
	remaining int
}

// Next implements item.Source.
func (s *takeSource[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if s.remaining <= 0 {
		s.cancel()
		return zero, false, nil
	}

	v, ok, err := s.upstream.Next(s.ctx)
	if err != nil || !ok {
		return zero, ok, err
	}

	s.remaining--
	if s.remaining == 0 {
		s.cancel()
	}
	return v, true, nil
}
