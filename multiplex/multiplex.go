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

// Package multiplex implements the Unified Stream Multiplexer: fan-in of
// several named, independently-paced producers into a single
// item.Source[T], with a one-way Open -> Frozen -> Drained lifecycle and
// a choice of fairness policy across concurrent enumerations.
package multiplex

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/logging"
)

// Fairness selects how an enumeration interleaves values across
// producers.
type Fairness int

const (
	// FairnessFirstAvailable emits whichever producer's next value
	// becomes ready first; ties are broken uniformly at random, per Go's
	// select semantics over simultaneously-ready channels.
	FairnessFirstAvailable Fairness = iota

	// FairnessRoundRobin visits producers in strict registration order,
	// one value per producer per lap: each Next waits on the ring's
	// current head and only advances to the next producer once that one
	// has produced, errored, or exhausted.
	FairnessRoundRobin
)

// Multiplexer holds named producers while Open and hands out independent
// fan-in views of them once Frozen. The zero value is not usable; create
// one with New.
type Multiplexer[T any] struct {
	mu       sync.Mutex
	bindings map[string]*binding[T]
	order    []string
	state    atomic.Int32
}

// New returns an empty, Open Multiplexer.
func New[T any]() *Multiplexer[T] {
	return &Multiplexer[T]{bindings: make(map[string]*binding[T])}
}

func (m *Multiplexer[T]) currentState() state {
	return state(m.state.Load())
}

// State reports the multiplexer's current lifecycle state.
func (m *Multiplexer[T]) State() string {
	return m.currentState().String()
}

// Register adds a named producer with an optional predicate (nil accepts
// everything). It returns errs.ErrDuplicateProducer if name is already
// registered, or errs.ErrEnumerationInProgress once the producer set has
// been frozen by a prior Enumerate call.
func (m *Multiplexer[T]) Register(name string, source item.Source[T], predicate func(T) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentState() != stateOpen {
		return errs.ErrEnumerationInProgress
	}
	if _, ok := m.bindings[name]; ok {
		return errs.ErrDuplicateProducer
	}

	m.bindings[name] = &binding[T]{name: name, source: source, predicate: predicate}
	m.order = append(m.order, name)
	return nil
}

// Unregister removes a previously registered producer. It is a no-op if
// name was never registered, and returns errs.ErrEnumerationInProgress
// once the producer set has been frozen.
func (m *Multiplexer[T]) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentState() != stateOpen {
		return errs.ErrEnumerationInProgress
	}

	delete(m.bindings, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Enumerate freezes the producer set on its first call — later calls see
// the same frozen set — and returns an independent item.Source[T] fan-in
// view over it. Each call gets its own cursor/ring state, so multiple
// concurrent enumerations over the same producers make independent
// progress through them, per §4.4. sink receives SourceFailure events
// under continueOnError; a nil sink discards them.
func (m *Multiplexer[T]) Enumerate(ctx context.Context, fairness Fairness, continueOnError bool, sink errs.Sink) item.Source[T] {
	m.mu.Lock()
	m.state.CompareAndSwap(int32(stateOpen), int32(stateFrozen))

	bindings := make(map[string]*binding[T], len(m.bindings))
	for k, v := range m.bindings {
		bindings[k] = v
	}
	order := make([]string, len(m.order))
	copy(order, m.order)
	m.mu.Unlock()

	if sink == nil {
		sink = errs.NopSink{}
	}

	enumID := uuid.New()
	logger := logging.FromContext(ctx).With("enumeration_id", enumID.String())

	// pumpCtx is this enumeration's own cancellation, separate from ctx:
	// a FailFast producer error cancels every other producer's pump and
	// drains them, without cancelling whatever the caller passed in.
	pumpCtx, cancel := context.WithCancel(ctx)

	var eg errgroup.Group
	e := &enumeration[T]{
		m:               m,
		continueOnError: continueOnError,
		fairness:        fairness,
		sink:            sink,
		logger:          logger,
		active:          make(map[string]chan pumpMsg[T], len(bindings)),
		ring:            order,
		drain:           &eg,
		cancel:          cancel,
	}
	for _, name := range order {
		ch := make(chan pumpMsg[T])
		e.active[name] = ch
		b := bindings[name]
		eg.Go(func() error {
			e.pump(pumpCtx, b, ch)
			return nil
		})
	}

	logger.Debugw("enumeration started", "producers", order, "fairness", fairnessName(fairness))
	return e
}

func fairnessName(f Fairness) string {
	if f == FairnessRoundRobin {
		return "round_robin"
	}
	return "first_available"
}
