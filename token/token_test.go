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

package token

import (
	"testing"
	"time"
)

func TestBackground_NeverFires(t *testing.T) {
	t.Parallel()

	select {
	case <-Background().Done():
		t.Fatal("background token should never fire")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestNew_Cancel(t *testing.T) {
	t.Parallel()

	tok, cancel := New()
	if err := tok.Err(); err != nil {
		t.Fatalf("expected nil err before cancel, got %v", err)
	}

	cancel()

	select {
	case <-tok.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancellation")
	}
	if tok.Err() == nil {
		t.Fatal("expected non-nil err after cancel")
	}

	// Idempotent.
	cancel()
}

func TestLink_FiresOnAnyParent(t *testing.T) {
	t.Parallel()

	a, cancelA := New()
	b, _ := New()

	composite, release := Link(a, b)
	defer release()

	select {
	case <-composite.Done():
		t.Fatal("composite fired before any parent")
	default:
	}

	cancelA()

	select {
	case <-composite.Done():
	case <-time.After(time.Second):
		t.Fatal("composite did not observe parent cancellation")
	}
}

func TestLink_PreCancelledParent(t *testing.T) {
	t.Parallel()

	a, cancelA := New()
	cancelA()

	composite, release := Link(a)
	defer release()

	select {
	case <-composite.Done():
	default:
		t.Fatal("composite should already be cancelled")
	}
}

func TestLink_ReleaseDoesNotCancelParents(t *testing.T) {
	t.Parallel()

	a, _ := New()
	_, release := Link(a)
	release()
	release() // idempotent

	select {
	case <-a.Done():
		t.Fatal("release must not cancel a parent")
	default:
	}
}

func TestLink_NilParentsIgnored(t *testing.T) {
	t.Parallel()

	composite, release := Link(nil, nil)
	defer release()

	select {
	case <-composite.Done():
		t.Fatal("composite of only nil parents should not fire")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLink_Associative(t *testing.T) {
	t.Parallel()

	a, cancelA := New()
	inner, releaseInner := Link(a)
	defer releaseInner()

	outer, releaseOuter := Link(inner)
	defer releaseOuter()

	cancelA()

	select {
	case <-outer.Done():
	case <-time.After(time.Second):
		t.Fatal("outer composite did not observe grandparent cancellation")
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("no_inputs_never_fires", func(t *testing.T) {
		t.Parallel()

		composite, release := Compose(nil, nil, 0)
		defer release()

		select {
		case <-composite.Done():
			t.Fatal("composite should not fire with no inputs and no timeout")
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("settings_token_independent_of_call_token", func(t *testing.T) {
		t.Parallel()

		settingsTok, cancelSettings := New()
		callTok, _ := New()

		composite, release := Compose(settingsTok, callTok, 0)
		defer release()

		cancelSettings()

		select {
		case <-composite.Done():
		case <-time.After(time.Second):
			t.Fatal("composite did not observe settings token cancellation")
		}
	})

	t.Run("timeout_fires_composite", func(t *testing.T) {
		t.Parallel()

		composite, release := Compose(nil, nil, 10*time.Millisecond)
		defer release()

		select {
		case <-composite.Done():
		case <-time.After(time.Second):
			t.Fatal("timeout did not fire the composite")
		}
	})

	t.Run("pre_cancelled_input_is_already_cancelled", func(t *testing.T) {
		t.Parallel()

		callTok, cancelCall := New()
		cancelCall()

		composite, release := Compose(nil, callTok, time.Hour)
		defer release()

		select {
		case <-composite.Done():
		default:
			t.Fatal("composite should already be cancelled")
		}
	})

	t.Run("release_stops_timer_without_firing", func(t *testing.T) {
		t.Parallel()

		composite, release := Compose(nil, nil, 50*time.Millisecond)
		release()
		release() // idempotent

		select {
		case <-composite.Done():
			t.Fatal("released timer must not still fire the composite")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestOnCancel_Stop(t *testing.T) {
	t.Parallel()

	tok, cancel := New()
	fired := make(chan struct{}, 1)
	stop := OnCancel(tok, func() { fired <- struct{}{} })
	stop()
	cancel()

	select {
	case <-fired:
		t.Fatal("callback should not fire after stop")
	case <-time.After(20 * time.Millisecond):
	}
}
