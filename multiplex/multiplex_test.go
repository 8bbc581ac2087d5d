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

package multiplex

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
)

func collectAll[T any](t *testing.T, ctx context.Context, src item.Source[T]) []T {
	t.Helper()
	var out []T
	for {
		v, ok, err := src.Next(ctx)
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	t.Parallel()

	m := New[int]()
	require.NoError(t, m.Register("a", item.FromSlice([]int{1}), nil))

	err := m.Register("a", item.FromSlice([]int{2}), nil)
	require.ErrorIs(t, err, errs.ErrDuplicateProducer)
}

func TestRegister_AfterFreezeFails(t *testing.T) {
	t.Parallel()

	m := New[int]()
	require.NoError(t, m.Register("a", item.FromSlice([]int{1}), nil))

	ctx := context.Background()
	_ = m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	err := m.Register("b", item.FromSlice([]int{2}), nil)
	require.ErrorIs(t, err, errs.ErrEnumerationInProgress)

	err = m.Unregister("a")
	require.ErrorIs(t, err, errs.ErrEnumerationInProgress)
}

func TestEnumerate_FirstAvailableFansInAllValues(t *testing.T) {
	t.Parallel()

	m := New[int]()
	require.NoError(t, m.Register("a", item.FromSlice([]int{1, 2, 3}), nil))
	require.NoError(t, m.Register("b", item.FromSlice([]int{4, 5, 6}), nil))

	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	got := collectAll(t, ctx, src)
	sort.Ints(got)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)
}

func TestEnumerate_RoundRobinVisitsEachProducer(t *testing.T) {
	t.Parallel()

	m := New[string]()
	require.NoError(t, m.Register("a", item.FromSlice([]string{"a1", "a2"}), nil))
	require.NoError(t, m.Register("b", item.FromSlice([]string{"b1", "b2"}), nil))

	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessRoundRobin, false, nil)

	got := collectAll(t, ctx, src)
	require.Len(t, got, 4)

	var as, bs []string
	for _, v := range got {
		switch v[0] {
		case 'a':
			as = append(as, v)
		case 'b':
			bs = append(bs, v)
		}
	}
	require.Equal(t, []string{"a1", "a2"}, as)
	require.Equal(t, []string{"b1", "b2"}, bs)
}

func TestEnumerate_PredicateFiltersValues(t *testing.T) {
	t.Parallel()

	m := New[int]()
	require.NoError(t, m.Register("evens", item.FromSlice([]int{1, 2, 3, 4, 5, 6}), func(v int) bool {
		return v%2 == 0
	}))

	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	got := collectAll(t, ctx, src)
	sort.Ints(got)
	require.Equal(t, []int{2, 4, 6}, got)
}

type errSource struct {
	err error
}

func (s errSource) Next(ctx context.Context) (int, bool, error) {
	return 0, false, s.err
}

func TestEnumerate_FailFastSurfacesSourceError(t *testing.T) {
	t.Parallel()

	m := New[int]()
	boom := errors.New("boom")
	require.NoError(t, m.Register("bad", errSource{err: boom}, nil))

	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	_, ok, err := src.Next(ctx)
	require.False(t, ok)
	require.Error(t, err)

	var sourceErr *errs.SourceError
	require.ErrorAs(t, err, &sourceErr)
	require.Equal(t, "bad", sourceErr.Name)
}

func TestEnumerate_FailFastCancelsAndDrainsOtherProducers(t *testing.T) {
	t.Parallel()

	m := New[int]()
	boom := errors.New("boom")
	require.NoError(t, m.Register("bad", errSource{err: boom}, nil))
	// "good" never sends and never closes; the only way its pump ever
	// returns is its ctx being cancelled.
	require.NoError(t, m.Register("good", &chanItemSource{ch: make(chan int)}, nil))

	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		_, _, err := src.Next(ctx)
		done <- result{err: err}
	}()

	select {
	case r := <-done:
		var sourceErr *errs.SourceError
		require.ErrorAs(t, r.err, &sourceErr)
		require.Equal(t, "bad", sourceErr.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("Next never returned: \"good\"'s pump goroutine was never cancelled/drained under FailFast")
	}

	require.Equal(t, "drained", m.State())
}

func TestEnumerate_ContinueOnErrorDropsFailedProducer(t *testing.T) {
	t.Parallel()

	m := New[int]()
	boom := errors.New("boom")
	require.NoError(t, m.Register("bad", errSource{err: boom}, nil))
	require.NoError(t, m.Register("good", item.FromSlice([]int{1, 2, 3}), nil))

	sink := &errs.SliceSink{}
	ctx := context.Background()
	src := m.Enumerate(ctx, FairnessFirstAvailable, true, sink)

	got := collectAll(t, ctx, src)
	sort.Ints(got)
	require.Equal(t, []int{1, 2, 3}, got)

	events := sink.Events()
	require.Len(t, events, 1)
	require.Equal(t, errs.KindSourceFailure, events[0].Kind)
	require.Equal(t, "bad", events[0].SourceName)
}

// chanItemSource is safe for concurrent Next calls, unlike item.FromSlice,
// so it is the right fixture for exercising two enumerations pulling from
// the same registered producer at once.
type chanItemSource struct {
	ch chan int
}

func newChanItemSource(values ...int) *chanItemSource {
	ch := make(chan int, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return &chanItemSource{ch: ch}
}

func (s *chanItemSource) Next(ctx context.Context) (int, bool, error) {
	select {
	case v, ok := <-s.ch:
		return v, ok, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

func TestMultiplexer_IndependentConcurrentEnumerationsShareProducer(t *testing.T) {
	t.Parallel()

	m := New[int]()
	require.NoError(t, m.Register("a", newChanItemSource(1, 2, 3, 4, 5, 6), nil))

	ctx := context.Background()
	src1 := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)
	src2 := m.Enumerate(ctx, FairnessFirstAvailable, false, nil)

	got1 := collectAll(t, ctx, src1)
	got2 := collectAll(t, ctx, src2)

	all := append(append([]int{}, got1...), got2...)
	sort.Ints(all)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, all)
}
