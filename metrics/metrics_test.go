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

package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abcxyz/apqe/errs"
)

func TestCounters_RecordAndSink(t *testing.T) {
	t.Parallel()

	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRaw()
			c.RecordEmitted()
		}()
	}
	wg.Wait()

	if got := c.RawRecordsParsed.Load(); got != 50 {
		t.Errorf("RawRecordsParsed = %d, want 50", got)
	}
	if got := c.RecordsEmitted.Load(); got != 50 {
		t.Errorf("RecordsEmitted = %d, want 50", got)
	}

	sink := c.Sink()
	for i := 0; i < 3; i++ {
		sink.Report(&errs.Event{Kind: errs.KindUserFunctionFailure})
	}
	if got := c.ErrorCount.Load(); got != 3 {
		t.Errorf("ErrorCount = %d, want 3", got)
	}
}

func TestCounters_CompletionAndEarlyTermination(t *testing.T) {
	t.Parallel()

	c := New()
	if c.CompletedUTC.Load() != nil {
		t.Fatal("CompletedUTC should start nil")
	}

	c.MarkTerminatedEarly()
	if !c.TerminatedEarly.Load() {
		t.Error("TerminatedEarly should be true after MarkTerminatedEarly")
	}

	now := time.Now()
	c.MarkCompleted(now)
	got := c.CompletedUTC.Load()
	if got == nil || !got.Equal(now) {
		t.Errorf("CompletedUTC = %v, want %v", got, now)
	}
}

func TestCounters_StringContainsSummaryFields(t *testing.T) {
	t.Parallel()

	c := New()
	c.RecordRaw()
	c.RecordEmitted()
	s := c.String()

	for _, want := range []string{"raw=1", "emitted=1", "errors=0", "early=false", "not completed"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, want substring %q", s, want)
		}
	}
}
