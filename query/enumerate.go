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

package query

import (
	"context"
	"errors"

	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/token"
)

// Enumerate realizes the operator chain: it links every Settings.Cancellations
// token together, then composes the result with ctx and Settings.Timeout
// (per C1), validates the resolved Settings, and builds every stage's
// pool/merge machinery. The returned item.Source[T] is ready to pull from;
// the returned release must be called exactly once, on every exit path,
// to stop the composed token's internal timer/watchers.
//
// A Query may be enumerated at most once — a second call, or a call on
// any Query sharing its origin, returns errs.ErrBuilderConsumed.
func Enumerate[T any](ctx context.Context, q *Query[T]) (item.Source[T], token.Release, error) {
	if !q.markConsumed() {
		return nil, func() {}, errs.ErrBuilderConsumed
	}

	if !q.settings.Mode.supported() {
		return nil, func() {}, errs.ErrUnsupportedMode
	}

	resolved := q.settings.resolved()
	if err := resolved.poolConfig().Validate(); err != nil {
		return nil, func() {}, err
	}

	cancellation, releaseLink := token.Link(resolved.Cancellations...)
	callTok := token.FromContext(ctx)

	composite, releaseCompose := token.Compose(cancellation, callTok, resolved.Timeout)
	runCtx, cancelCtx := token.WithContext(ctx, composite)

	release := func() {
		cancelCtx()
		releaseCompose()
		releaseLink()
	}

	src, err := q.build(runCtx)
	if err != nil {
		release()
		return nil, func() {}, err
	}
	return src, release, nil
}

// ToSlice realizes and fully drains the chain into a slice. A cooperative
// cancellation (ctx, any linked Settings.Cancellations token, or
// Settings.Timeout firing) surfaces as errs.ErrCancelled rather than a raw
// context error, per §7's "cancellation is reported distinctly from
// failure" rule; any items already produced are still returned alongside
// the error.
func ToSlice[T any](ctx context.Context, q *Query[T]) ([]T, error) {
	src, release, err := Enumerate(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []T
	for {
		v, ok, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return out, errs.ErrCancelled
			}
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
