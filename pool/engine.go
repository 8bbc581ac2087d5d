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
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/logging"
	"github.com/abcxyz/apqe/merge"
)

// worker is the per-item unit of work shared by Map, Filter, and FlatMap:
// given the item's assigned index and payload, it returns the merge
// entries to submit (exactly one for Map, one for Filter, N+1 — the
// sentinel included — for FlatMap), or the user function's error.
type worker[T, U any] func(ctx context.Context, idx uint64, value T) ([]merge.Entry[U], error)

// run is the dispatcher/worker loop underlying every exported entry
// point. It owns a context derived from ctx (never ctx itself) so that a
// fail-fast failure cancels only this invocation's in-flight work,
// per §4.2: the pool never reaches back to cancel the caller's composed
// token.
//
// Grounded on the teacher's workerpool.Pool[T].Do/Done pair
// (semaphore.Weighted gate, one goroutine per accepted item), generalized
// from "collect a slice, then return" to "stream a channel," with
// completions optionally routed through merge.Run to restore source
// order.
func run[T, U any](ctx context.Context, cfg *Config, src item.Source[T], flatMap bool, w worker[T, U]) <-chan item.Item[U] {
	out := make(chan item.Item[U], cfg.BufferSize)
	sem := semaphore.NewWeighted(int64(cfg.MaxConcurrency))

	runCtx, cancel := context.WithCancel(ctx)

	var mergeIn chan merge.Entry[U]
	if cfg.PreserveOrder {
		mergeIn = make(chan merge.Entry[U], cfg.BufferSize)
		go merge.Run(runCtx, 0, flatMap, mergeIn, out)
	}

	go func() {
		defer cancel()
		if cfg.PreserveOrder {
			defer close(mergeIn)
		} else {
			defer close(out)
		}

		logger := logging.FromContext(ctx)
		sink := cfg.sink()

		var wg sync.WaitGroup
		var idx uint64

		emit := func(e merge.Entry[U]) bool {
			if cfg.PreserveOrder {
				select {
				case mergeIn <- e:
					return true
				case <-runCtx.Done():
					return false
				}
			}
			if e.Skip {
				return true
			}
			select {
			case out <- item.New(e.Value, e.Key.Index):
				return true
			case <-runCtx.Done():
				return false
			}
		}

	dispatch:
		for {
			if runCtx.Err() != nil {
				break
			}

			value, ok, err := src.Next(runCtx)
			if err != nil {
				sink.Report(&errs.Event{
					Kind:     errs.KindSourceFailure,
					Message:  err.Error(),
					Cause:    err,
					HasIndex: true,
					Index:    idx,
				})
				if !cfg.ContinueOnError {
					cancel()
				}
				break
			}
			if !ok {
				break
			}

			if err := sem.Acquire(runCtx, 1); err != nil {
				break dispatch
			}

			i := idx
			v := value
			idx++

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)

				entries, err := w(runCtx, i, v)
				if err != nil {
					ufe := &errs.UserFunctionError{Index: i, Err: err}
					sink.Report(&errs.Event{
						Kind:     errs.KindUserFunctionFailure,
						Message:  ufe.Error(),
						Cause:    ufe,
						HasIndex: true,
						Index:    i,
					})
					if !cfg.ContinueOnError {
						cancel()
						return
					}
					// Skip the item but still advance the merger's cursor. A
					// failed FlatMap item never produced a real sentinel, so
					// the skip itself must carry SubEnd to close out its
					// sub-sequence instead of stalling the cursor at Sub 0.
					skipKey := merge.Key{Index: i}
					if flatMap {
						skipKey.Sub = merge.SubEnd
					}
					emit(merge.Entry[U]{Key: skipKey, Skip: true})
					return
				}

				for _, e := range entries {
					if !emit(e) {
						return
					}
				}
			}()
		}

		wg.Wait()
		logger.Debugw("pool dispatcher finished", "concurrency", cfg.MaxConcurrency, "dispatched", idx)
	}()

	return out
}
