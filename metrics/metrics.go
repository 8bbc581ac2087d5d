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

// Package metrics implements the engine's opaque counters: a concurrency-safe
// accumulator a caller can pass alongside a query.Settings.Sink to observe
// what a run did without parsing log output.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/timeutil"
)

// New returns a Counters with its start time stamped at creation, so
// String can report the run's elapsed wall-clock duration.
func New() *Counters {
	return &Counters{start: time.Now()}
}

// Counters accumulates a single query run's outcome. The zero value is
// usable directly (elapsed duration reports 0s until New stamps a start
// time). Every field is safe for concurrent updates from the pool's
// worker goroutines and the multiplexer's pump goroutines.
type Counters struct {
	start time.Time

	// RawRecordsParsed counts every value pulled off a source, regardless
	// of whether it survived a Filter or failed in a later stage.
	RawRecordsParsed atomic.Uint64

	// RecordsEmitted counts values that reached the end of the chain.
	RecordsEmitted atomic.Uint64

	// ErrorCount counts UserFunctionFailure/SourceFailure events reported
	// under ContinueOnError. A fail-fast run's single terminal error is not
	// counted here; it is returned directly to the caller instead.
	ErrorCount atomic.Uint64

	// TerminatedEarly is set once if the run ended via cancellation,
	// timeout, or Take(n) rather than source exhaustion.
	TerminatedEarly atomic.Bool

	// CompletedUTC is set exactly once, only on natural completion (source
	// exhaustion with no cancellation), never on an early or cancelled
	// exit. A nil value means the run never completed naturally.
	CompletedUTC atomic.Pointer[time.Time]
}

// Sink adapts Counters into an errs.Sink, so a caller can hand
// (&Counters{}).Sink() directly to query.Settings.Sink and have
// ContinueOnError failures counted automatically.
func (c *Counters) Sink() errs.Sink {
	return (*sink)(c)
}

type sink Counters

// Report implements errs.Sink.
func (s *sink) Report(e *errs.Event) {
	(*Counters)(s).ErrorCount.Add(1)
}

// RecordRaw increments RawRecordsParsed by one.
func (c *Counters) RecordRaw() {
	c.RawRecordsParsed.Add(1)
}

// RecordEmitted increments RecordsEmitted by one.
func (c *Counters) RecordEmitted() {
	c.RecordsEmitted.Add(1)
}

// MarkTerminatedEarly records that the run did not exhaust its source.
func (c *Counters) MarkTerminatedEarly() {
	c.TerminatedEarly.Store(true)
}

// MarkCompleted records the wall-clock moment a run finished naturally.
// Calling it after MarkTerminatedEarly is a caller error the type cannot
// prevent; callers own calling exactly one of the two per run.
func (c *Counters) MarkCompleted(at time.Time) {
	c.CompletedUTC.Store(&at)
}

// String renders a human-readable summary, e.g. for a demo binary's final
// log line.
func (c *Counters) String() string {
	completed := "not completed"
	if t := c.CompletedUTC.Load(); t != nil {
		completed = fmt.Sprintf("completed at %s", t.Format(time.RFC3339))
	}
	var elapsed time.Duration
	if !c.start.IsZero() {
		elapsed = time.Since(c.start)
	}
	return fmt.Sprintf(
		"raw=%d emitted=%d errors=%d early=%t %s (elapsed: %s)",
		c.RawRecordsParsed.Load(),
		c.RecordsEmitted.Load(),
		c.ErrorCount.Load(),
		c.TerminatedEarly.Load(),
		completed,
		timeutil.HumanDuration(elapsed),
	)
}
