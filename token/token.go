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

// Package token implements the Cancellation Composer: an observable
// cancellation signal (Token) with a lifecycle of Active -> Cancelled or
// Active -> Disposed, and a Compose function that derives one effective
// Token from several independent sources with guaranteed, idempotent
// release of whatever it linked.
//
// Token is deliberately a two-method interface — Done/Err — so that a
// [context.Context] satisfies it structurally; FromContext and ToContext
// exist only to make that relationship explicit at call sites.
package token

import (
	"context"
	"sync"
	"time"
)

// Token is an observable cancellation signal. Done is closed exactly once,
// the moment the token transitions out of Active; Err reports why.
type Token interface {
	Done() <-chan struct{}
	Err() error
}

// CancelFunc transitions a Token created by [New] from Active to Cancelled.
// Calling it more than once, or after the token already fired, is a no-op.
type CancelFunc func()

// Release stops whatever a composing call (Compose, Link) registered against
// its parent Tokens. It never cancels a parent, is safe to call from any
// goroutine, and is idempotent — calling it more than once after the first
// has no further effect. Every exit path out of a scope that called Compose
// or Link must invoke the matching Release.
type Release func()

// background is the always-active sentinel: its Done channel never closes.
// It is returned wherever the spec calls for "no token" — compose treats a
// nil Token as absent, but code that needs a concrete Token to pass around
// (e.g. a default ExecutionSettings.Cancellation) uses Background.
var background Token = backgroundToken{}

type backgroundToken struct{}

func (backgroundToken) Done() <-chan struct{} { return nil }
func (backgroundToken) Err() error            { return nil }

// Background returns the always-active sentinel Token.
func Background() Token { return background }

// FromContext adapts a context.Context to a Token. Since Token is a
// structural subset of Context's method set, this is an identity
// conversion; it exists to keep Context out of the engine's public
// vocabulary (see package doc).
func FromContext(ctx context.Context) Token { return ctx }

// cancelToken is the concrete Token returned by New; it is built directly
// on context.WithCancel rather than a bespoke channel/mutex pair, since
// that is exactly the primitive context already provides and the teacher
// corpus reaches for context everywhere a cancellation signal is needed.
type cancelToken struct {
	ctx context.Context
}

func (c cancelToken) Done() <-chan struct{} { return c.ctx.Done() }
func (c cancelToken) Err() error             { return c.ctx.Err() }

// New creates a fresh Token with no parents, and the CancelFunc that fires
// it.
func New() (Token, CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	return cancelToken{ctx: ctx}, CancelFunc(cancel)
}

// NewTimeout creates a Token that fires on its own after d elapses. A
// non-positive d is treated as Infinite: the returned Token never fires on
// its own (it can still be linked by a later Compose/Link call).
func NewTimeout(d time.Duration) (Token, Release) {
	if d <= 0 {
		t, cancel := New()
		return t, Release(func() { cancel() })
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	return cancelToken{ctx: ctx}, Release(func() { cancel() })
}

// OnCancel registers fn to run once when t fires. The returned stop
// function deregisters the callback; calling stop after t has already
// fired is safe and simply a no-op, since fn has already run (or is
// already running).
func OnCancel(t Token, fn func()) (stop func()) {
	if t == nil || fn == nil {
		return func() {}
	}
	done := t.Done()
	if done == nil {
		// Background-style sentinel: never fires, nothing to stop.
		return func() {}
	}

	stopCh := make(chan struct{})
	var once sync.Once
	go func() {
		select {
		case <-done:
			select {
			case <-stopCh:
				return
			default:
			}
			fn()
		case <-stopCh:
		}
	}()
	return func() {
		once.Do(func() { close(stopCh) })
	}
}

// Link builds a composite Token that fires the moment any of parents
// fires, and a Release that tears down the linkage without cancelling any
// parent. Nil parents are ignored, so callers can pass optional Tokens
// straight through. Composition is associative: linking a Token that is
// itself the output of an earlier Link just adds one more layer of
// indirection, and the earliest ancestors are still observed.
func Link(parents ...Token) (Token, Release) {
	composite, cancel := New()

	stops := make([]func(), 0, len(parents))
	for _, p := range parents {
		if p == nil {
			continue
		}
		// Pre-cancelled parents must be observed synchronously, not after
		// a goroutine gets scheduled, so a composed Token built from an
		// already-fired parent comes back already cancelled.
		select {
		case <-p.Done():
			cancel()
			continue
		default:
		}
		stops = append(stops, OnCancel(p, cancel))
	}

	release := Release(func() {
		for _, stop := range stops {
			stop()
		}
	})
	return composite, onceRelease(release)
}

// Compose derives one effective Token from up to three independent
// sources, per the Cancellation Composer's public contract: a
// settings-level Token, a consumer-supplied call-site Token, and an
// internal timeout. A non-positive timeout attaches nothing. The returned
// Release stops the timer and drops all parent linkage; it never cancels
// settingsTok or callTok, and is idempotent.
func Compose(settingsTok, callTok Token, timeout time.Duration) (Token, Release) {
	composite, cancel := New()

	stops := make([]func(), 0, 2)
	link := func(parent Token) {
		if parent == nil {
			return
		}
		select {
		case <-parent.Done():
			cancel()
			return
		default:
		}
		stops = append(stops, OnCancel(parent, cancel))
	}
	link(settingsTok)
	link(callTok)

	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() { cancel() })
	}

	release := Release(func() {
		for _, stop := range stops {
			stop()
		}
		if timer != nil {
			timer.Stop()
		}
	})
	return composite, onceRelease(release)
}

// WithContext adapts a Token into a plain context.Context, for handing to
// code (pool dispatchers, multiplexer producers) that is written against
// context.Context rather than the engine's narrower Token vocabulary. The
// returned CancelFunc releases the adaptation's internal goroutine; it
// never cancels t itself and must be called on every exit path.
func WithContext(parent context.Context, t Token) (context.Context, CancelFunc) {
	if t == nil {
		return parent, func() {}
	}

	ctx, cancel := context.WithCancel(parent)
	stop := OnCancel(t, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// onceRelease wraps a Release so repeated invocations after the first are
// no-ops, satisfying the "release handle is idempotent" requirement.
func onceRelease(r Release) Release {
	var once sync.Once
	return func() {
		once.Do(func() { r() })
	}
}
