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
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/slices"
)

// pumpMsg is what a producer's pump goroutine hands to the enumeration:
// either a predicate-accepted value, or the terminal error the producer's
// Next returned.
type pumpMsg[T any] struct {
	name  string
	value T
	err   error
}

// enumeration is the item.Source[T] returned by Multiplexer.Enumerate. One
// pump goroutine per producer reads item.Source.Next in a loop and
// publishes onto a per-producer channel; Next applies the chosen Fairness
// policy to pick which channel to read from next.
type enumeration[T any] struct {
	m               *Multiplexer[T]
	continueOnError bool
	fairness        Fairness
	sink            errs.Sink
	logger          *zap.SugaredLogger

	// drain awaits every pump goroutine's actual OS-thread return, so the
	// Frozen -> Drained transition reflects every producer goroutine
	// having exited rather than just every channel having been observed
	// closed (which happens one statement earlier, in pump's defer).
	drain *errgroup.Group

	// cancel stops every pump goroutine's context. It is called from
	// reportProducerError's FailFast branch, so one producer's failure
	// actually cancels and drains the rest instead of leaving them
	// blocked forever on an unread channel send.
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]chan pumpMsg[T]
	ring   []string
	cursor int

	failErr error
}

// drainAndTransition awaits every pump goroutine's exit and advances the
// Multiplexer to Drained. Safe to call more than once (Wait and
// CompareAndSwap are both idempotent in that sense).
func (e *enumeration[T]) drainAndTransition() {
	e.cancel()
	_ = e.drain.Wait()
	e.m.state.CompareAndSwap(int32(stateFrozen), int32(stateDrained))
}

func (e *enumeration[T]) pump(ctx context.Context, b *binding[T], ch chan<- pumpMsg[T]) {
	defer close(ch)
	for {
		v, ok, err := b.source.Next(ctx)
		if err != nil {
			select {
			case ch <- pumpMsg[T]{name: b.name, err: err}:
			case <-ctx.Done():
			}
			return
		}
		if !ok {
			return
		}
		if !b.accepts(v) {
			continue
		}
		select {
		case ch <- pumpMsg[T]{name: b.name, value: v}:
		case <-ctx.Done():
			return
		}
	}
}

// Next implements item.Source. It blocks until a value is available from
// some active producer, every producer has cleanly exhausted, or ctx is
// done.
func (e *enumeration[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		e.mu.Lock()
		if e.failErr != nil {
			err := e.failErr
			e.mu.Unlock()
			e.drainAndTransition()
			return zero, false, err
		}
		if len(e.active) == 0 {
			e.mu.Unlock()
			e.drainAndTransition()
			return zero, false, nil
		}
		e.mu.Unlock()

		msg, ok, err := e.pull(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			// A producer's channel closed cleanly; loop to re-check
			// whether any are still active.
			continue
		}
		if msg.err != nil {
			if !e.reportProducerError(msg.name, msg.err) {
				e.mu.Lock()
				failErr := e.failErr
				e.mu.Unlock()
				e.drainAndTransition()
				return zero, false, failErr
			}
			continue
		}
		return msg.value, true, nil
	}
}

// reportProducerError records a producer failure. Under FailFast it
// latches the error for every subsequent Next and returns false; under
// ContinueOnError it reports to the sink, drops the producer, and returns
// true so the caller keeps going.
func (e *enumeration[T]) reportProducerError(name string, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.continueOnError {
		if e.failErr == nil {
			e.failErr = &errs.SourceError{Name: name, Err: err}
			e.cancel()
		}
		return false
	}

	e.sink.Report(&errs.Event{
		Kind:       errs.KindSourceFailure,
		Message:    err.Error(),
		Cause:      err,
		SourceName: name,
	})
	e.removeLocked(name)
	return true
}

// removeLocked drops a producer from rotation. Callers must hold e.mu.
func (e *enumeration[T]) removeLocked(name string) {
	delete(e.active, name)
	e.ring = slices.Filter(e.ring, func(n string) bool { return n != name })
	if len(e.ring) > 0 {
		e.cursor %= len(e.ring)
	} else {
		e.cursor = 0
	}
}

// pull fetches the next message according to e.fairness. ok is false (with
// a nil error) only when the channel it chose to read from had already
// closed — the caller is expected to loop and re-evaluate.
func (e *enumeration[T]) pull(ctx context.Context) (pumpMsg[T], bool, error) {
	if e.fairness == FairnessRoundRobin {
		return e.pullRoundRobin(ctx)
	}
	return e.pullFirstAvailable(ctx)
}

func (e *enumeration[T]) pullFirstAvailable(ctx context.Context) (pumpMsg[T], bool, error) {
	e.mu.Lock()
	names := make([]string, 0, len(e.active))
	cases := make([]reflect.SelectCase, 0, len(e.active)+1)
	for name, ch := range e.active {
		names = append(names, name)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)})
	}
	e.mu.Unlock()

	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

	chosen, recv, recvOK := reflect.Select(cases)
	if chosen == len(names) {
		var zero pumpMsg[T]
		return zero, false, ctx.Err()
	}
	if !recvOK {
		e.mu.Lock()
		e.removeLocked(names[chosen])
		e.mu.Unlock()
		var zero pumpMsg[T]
		return zero, false, nil
	}
	return recv.Interface().(pumpMsg[T]), true, nil
}

// pullRoundRobin always waits on the ring's current head: strict
// alternation is the point of round-robin fairness, so a faster producer
// is never allowed to jump the queue ahead of a slower one still due its
// turn. The wait is itself interruptible via ctx.Done(), so a stalled
// producer never wedges the whole enumeration.
func (e *enumeration[T]) pullRoundRobin(ctx context.Context) (pumpMsg[T], bool, error) {
	var zero pumpMsg[T]

	e.mu.Lock()
	if len(e.ring) == 0 {
		e.mu.Unlock()
		return zero, false, nil
	}
	name := e.ring[e.cursor%len(e.ring)]
	ch := e.active[name]
	e.mu.Unlock()

	select {
	case msg, ok := <-ch:
		e.mu.Lock()
		defer e.mu.Unlock()
		if !ok {
			e.removeLocked(name)
			return zero, false, nil
		}
		for i, n := range e.ring {
			if n == name {
				e.cursor = i + 1
				break
			}
		}
		if len(e.ring) > 0 {
			e.cursor %= len(e.ring)
		}
		return msg, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}
