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

// Package errs defines the engine's error taxonomy and the ErrorSink
// contract used by continue-on-error processing.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the engine's consumers reason about
// it, independent of its Go type.
type Kind string

const (
	// KindInputValidation is raised synchronously at configuration time,
	// e.g. MaxConcurrency <= 0.
	KindInputValidation Kind = "input_validation"

	// KindCancellation marks a terminal-but-expected signal: the composite
	// token fired, by user request, timeout, or Take(n) completion. Never
	// reported via a Sink, never counted as an error.
	KindCancellation Kind = "cancellation"

	// KindUserFunctionFailure marks a failure raised by a caller-supplied
	// map/filter/flat-map function.
	KindUserFunctionFailure Kind = "user_function_failure"

	// KindSourceFailure marks a failure raised by a multiplexer producer.
	KindSourceFailure Kind = "source_failure"

	// KindInvariantViolation marks a programming error: duplicate producer
	// name, mutation after freeze, reuse of a consumed builder. Always
	// surfaced synchronously, never retried, never sent to a Sink.
	KindInvariantViolation Kind = "invariant_violation"
)

var (
	// ErrInvalidConcurrency is returned when MaxConcurrency <= 0 is
	// explicitly requested (as opposed to left at its default).
	ErrInvalidConcurrency = errors.New("max concurrency must be at least 1")

	// ErrInvalidBufferSize is returned when BufferSize is below the
	// configured minimum.
	ErrInvalidBufferSize = errors.New("buffer size is below the minimum")

	// ErrDuplicateProducer is returned by Multiplexer.Register when the
	// given name is already registered.
	ErrDuplicateProducer = errors.New("duplicate producer name")

	// ErrEnumerationInProgress is returned by Register/Unregister once a
	// multiplexer has frozen its producer set.
	ErrEnumerationInProgress = errors.New("enumeration in progress")

	// ErrBuilderConsumed is returned when a Query is enumerated more than
	// once; queries are single-use once realized.
	ErrBuilderConsumed = errors.New("query was already enumerated")

	// ErrCancelled wraps context.Canceled/context.DeadlineExceeded so
	// callers can distinguish cooperative cancellation from a real failure
	// with a single errors.Is(err, ErrCancelled) check.
	ErrCancelled = errors.New("operation was cancelled")

	// ErrUnsupportedMode is returned when a Query's Settings.Mode selects
	// a synchronous execution model; this module only realizes the
	// asynchronous ones.
	ErrUnsupportedMode = errors.New("execution mode is not implemented by this engine")
)

// Event is the structured payload handed to a Sink under
// continue-on-error processing.
type Event struct {
	Kind    Kind
	Message string

	// SourceName is set when the event originated from a named USM
	// producer; empty for plain pool processing.
	SourceName string

	// Index is the source position of the item that failed, when known.
	Index    uint64
	HasIndex bool

	Cause error
}

// Error implements the error interface so an Event can be passed around
// anywhere an error is expected (e.g. wrapped into a UserFunctionError).
func (e *Event) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Event) Unwrap() error {
	return e.Cause
}

// Sink is the ErrorSink contract from the engine's external interfaces:
// implementations are expected to be safe for concurrent use, since both
// the pool and the multiplexer may report to the same Sink from several
// goroutines at once.
type Sink interface {
	Report(e *Event)
}

// UserFunctionError wraps a user function's failure with the item context
// required under fail-fast processing.
type UserFunctionError struct {
	Index uint64
	Err   error
}

func (e *UserFunctionError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *UserFunctionError) Unwrap() error {
	return e.Err
}

// SourceError wraps a multiplexer producer's failure with the "source
// '<name>' failed" context required by §4.4's FailFast policy.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source '%s' failed: %v", e.Name, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
