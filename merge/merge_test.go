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

package merge

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/abcxyz/apqe/item"
)

func TestRun_ReordersToSourceOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := make(chan Entry[int])
	out := make(chan item.Item[int])

	go Run(ctx, 0, false, in, out)

	// Submit out of order: 2, 0, 1, then 4, 3.
	order := []int{2, 0, 1, 4, 3}
	go func() {
		for _, idx := range order {
			in <- Entry[int]{Key: Key{Index: uint64(idx)}, Value: idx * 10}
		}
		close(in)
	}()

	var got []int
	for it := range out {
		got = append(got, it.Payload)
	}

	want := []int{0, 10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("got %v entries, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestRun_SkipEntriesAdvanceCursorWithoutEmitting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := make(chan Entry[int])
	out := make(chan item.Item[int])

	go Run(ctx, 0, false, in, out)

	go func() {
		in <- Entry[int]{Key: Key{Index: 0}, Value: 100}
		in <- Entry[int]{Key: Key{Index: 1}, Skip: true}
		in <- Entry[int]{Key: Key{Index: 2}, Value: 300}
		close(in)
	}()

	var got []item.Item[int]
	for it := range out {
		got = append(got, it)
	}

	if len(got) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(got), got)
	}
	if got[0].Payload != 100 || got[0].Index != 0 {
		t.Errorf("unexpected first item: %+v", got[0])
	}
	if got[1].Payload != 300 || got[1].Index != 2 {
		t.Errorf("unexpected second item: %+v", got[1])
	}
}

func TestRun_FlatMapSubSequenceOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := make(chan Entry[string])
	out := make(chan item.Item[string])

	go Run(ctx, 0, true, in, out)

	go func() {
		// Parent 1 finishes and is submitted before parent 0, out of order.
		in <- Entry[string]{Key: Key{Index: 1, Sub: 0}, Value: "1a"}
		in <- Entry[string]{Key: Key{Index: 1, Sub: 1}, Value: "1b"}
		in <- Entry[string]{Key: Key{Index: 1, Sub: SubEnd}, Skip: true}

		in <- Entry[string]{Key: Key{Index: 0, Sub: 0}, Value: "0a"}
		in <- Entry[string]{Key: Key{Index: 0, Sub: SubEnd}, Skip: true}
		close(in)
	}()

	var got []string
	for it := range out {
		got = append(got, it.Payload)
	}

	want := []string{"0a", "1a", "1b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestRun_CancellationDrainsWithoutWaitingForGap(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan Entry[int])
	out := make(chan item.Item[int], 2)

	go Run(ctx, 0, false, in, out)

	in <- Entry[int]{Key: Key{Index: 0}, Value: 0}
	in <- Entry[int]{Key: Key{Index: 1}, Value: 10}
	// Index 2 is missing, so the merger is now stuck waiting for a gap.

	cancel()

	var got []int
	for it := range out {
		got = append(got, it.Payload)
	}

	if len(got) != 2 {
		t.Fatalf("got %v, want exactly the contiguous prefix [0 10]", got)
	}
}

func TestRun_RandomizedPermutationRestoresOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const n = 200
	in := make(chan Entry[int])
	out := make(chan item.Item[int])

	go Run(ctx, 0, false, in, out)

	perm := rand.New(rand.NewSource(1)).Perm(n)
	go func() {
		for _, idx := range perm {
			in <- Entry[int]{Key: Key{Index: uint64(idx)}, Value: idx}
			if idx%7 == 0 {
				time.Sleep(time.Microsecond)
			}
		}
		close(in)
	}()

	i := 0
	for it := range out {
		if it.Payload != i || int(it.Index) != i {
			t.Fatalf("position %d: got payload=%d index=%d, want %d", i, it.Payload, it.Index, i)
		}
		i++
	}
	if i != n {
		t.Fatalf("got %d items, want %d", i, n)
	}
}
