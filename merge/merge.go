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

// Package merge implements the Order-Preserving Merger: a single
// coordinator goroutine that reassembles completions which may arrive out
// of index order back into source order, using a min-heap keyed by index
// (ordinary map/filter) or by a lexicographic (index, sub-index) pair
// (flat-map).
//
// The heap shape is grounded on the priority-queue pattern in
// container/heap-based worker pools (see the work-pool reference in the
// example corpus): a []Entry[T] implementing heap.Interface, driven by a
// single owning goroutine so the heap itself never needs a lock — workers
// publish completions by sending on a channel, never by touching the heap
// directly, per the engine's message-passing resource policy.
package merge

import (
	"container/heap"
	"context"
	"math"

	"github.com/abcxyz/apqe/item"
)

// SubEnd marks the sub-index of the sentinel entry a flat-map worker
// submits once its sub-sequence is exhausted: Key{Index: i, Sub: SubEnd}
// is the "(i, infinity)" marker from the design, and always carries
// Skip=true.
const SubEnd = math.MaxUint64

// Key orders completions the way the merger's cursor advances: by Index
// first, then by Sub. Plain map/filter completions always carry Sub 0 and
// are compared purely by Index.
type Key struct {
	Index uint64
	Sub   uint64
}

func (k Key) less(o Key) bool {
	if k.Index != o.Index {
		return k.Index < o.Index
	}
	return k.Sub < o.Sub
}

// Entry is one completion handed to the coordinator: a result to emit, a
// filter-drop, or a flat-map sub-sequence item/terminator. Skip entries
// advance the cursor without reaching the output channel.
type Entry[T any] struct {
	Key   Key
	Value T
	Skip  bool
}

type entryHeap[T any] []Entry[T]

func (h entryHeap[T]) Len() int           { return len(h) }
func (h entryHeap[T]) Less(i, j int) bool { return h[i].Key.less(h[j].Key) }
func (h entryHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[T]) Push(x any) {
	*h = append(*h, x.(Entry[T]))
}

func (h *entryHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Run is the merger's coordinator loop. It owns the heap exclusively,
// consuming Entry values from in and writing reassembled items to out in
// source order, starting from startIndex. Run closes out before
// returning, on every exit path (ctx cancellation, flat-map or
// non-flat-map planner, or in being closed by the dispatcher).
//
// When ctx is cancelled, Run takes the entries already queued on in,
// stops waiting for further ones, and flushes whatever prefix the heap
// can emit contiguously into out's free capacity, per the
// "drains its heap without further waiting" rule: it never blocks hoping
// a missing index shows up.
func Run[T any](ctx context.Context, startIndex uint64, flatMap bool, in <-chan Entry[T], out chan<- item.Item[T]) {
	defer close(out)

	h := &entryHeap[T]{}
	heap.Init(h)
	next := Key{Index: startIndex, Sub: 0}

	advance := func(k Key) {
		if flatMap {
			if k.Sub == SubEnd {
				next = Key{Index: k.Index + 1, Sub: 0}
				return
			}
			next = Key{Index: k.Index, Sub: k.Sub + 1}
			return
		}
		next = Key{Index: k.Index + 1, Sub: 0}
	}

	// drain emits every entry the heap can deliver contiguously starting
	// at next. In flat-map mode the (next.Index, SubEnd) sentinel also
	// counts as contiguous, since it closes that item's sub-sequence. It
	// returns false if ctx fired while it was trying to emit, signalling
	// Run to stop immediately; an emit that out can take at once is made
	// even after ctx fired.
	drain := func() bool {
		for h.Len() > 0 && ((*h)[0].Key == next || flatMap && (*h)[0].Key == (Key{Index: next.Index, Sub: SubEnd})) {
			e := heap.Pop(h).(Entry[T])
			advance(e.Key)
			if e.Skip {
				continue
			}
			select {
			case out <- item.New(e.Value, e.Key.Index):
				continue
			default:
			}
			select {
			case out <- item.New(e.Value, e.Key.Index):
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			for queued := true; queued; {
				select {
				case e, ok := <-in:
					if queued = ok; ok {
						heap.Push(h, e)
					}
				default:
					queued = false
				}
			}
			drain()
			return
		case e, ok := <-in:
			if !ok {
				drain()
				return
			}
			heap.Push(h, e)
			if !drain() {
				return
			}
		}
	}
}
