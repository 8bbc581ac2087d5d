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

package item

import (
	"context"
	"errors"
	"testing"
)

func TestFromSlice_YieldsInOrderThenEnds(t *testing.T) {
	t.Parallel()

	src := FromSlice([]string{"a", "b", "c"})
	ctx := context.Background()

	var got []string
	for {
		v, ok, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v)
	}

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromSlice_RespectsCancelledContext(t *testing.T) {
	t.Parallel()

	src := FromSlice([]int{1, 2, 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := src.Next(ctx)
	if ok {
		t.Fatal("expected ok=false for a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestSourceFunc_AdaptsPlainFunction(t *testing.T) {
	t.Parallel()

	calls := 0
	src := SourceFunc[int](func(context.Context) (int, bool, error) {
		calls++
		if calls > 1 {
			return 0, false, nil
		}
		return 42, true, nil
	})

	v, ok, err := src.Next(context.Background())
	if err != nil || !ok || v != 42 {
		t.Fatalf("first Next = (%d, %t, %v), want (42, true, nil)", v, ok, err)
	}

	_, ok, err = src.Next(context.Background())
	if err != nil || ok {
		t.Fatalf("second Next = (ok=%t, err=%v), want (false, nil)", ok, err)
	}
}

func TestNew_WrapsPayloadAndIndex(t *testing.T) {
	t.Parallel()

	it := New("payload", 7)
	if it.Payload != "payload" || it.Index != 7 {
		t.Errorf("got %+v, want {payload 7}", it)
	}
}
