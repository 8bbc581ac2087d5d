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

package errs

import (
	"errors"
	"sync"
	"testing"
)

func TestUserFunctionError_WrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	e := &UserFunctionError{Index: 3, Err: cause}

	if !errors.Is(e, cause) {
		t.Error("errors.Is should see through UserFunctionError to its cause")
	}
	if got, want := e.Error(), `item 3: boom`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSourceError_WrapsCauseAndNamesSource(t *testing.T) {
	t.Parallel()

	cause := errors.New("disconnected")
	e := &SourceError{Name: "orders", Err: cause}

	if !errors.Is(e, cause) {
		t.Error("errors.Is should see through SourceError to its cause")
	}
	if got, want := e.Error(), `source 'orders' failed: disconnected`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSliceSink_AccumulatesConcurrently(t *testing.T) {
	t.Parallel()

	sink := &SliceSink{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Report(&Event{Kind: KindUserFunctionFailure})
		}()
	}
	wg.Wait()

	if got := len(sink.Events()); got != 20 {
		t.Errorf("got %d events, want 20", got)
	}
}

func TestNopSink_DiscardsEverything(t *testing.T) {
	t.Parallel()

	// Must not panic regardless of what it is handed.
	NopSink{}.Report(nil)
	NopSink{}.Report(&Event{Kind: KindCancellation})
}

func TestEvent_ErrorFallsBackToCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	e := &Event{Cause: cause}
	if got, want := e.Error(), "root cause"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
