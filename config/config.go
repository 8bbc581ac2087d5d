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

// Package config loads query.Settings overrides from YAML and/or the
// environment, the same way the teacher's services load deployment
// config: cfgloader.Load layers an existing value, then YAML bytes, then
// env vars, each overwriting the last.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/abcxyz/apqe/cfgloader"
	"github.com/abcxyz/apqe/pointer"
	"github.com/abcxyz/apqe/query"
)

// Overrides is the subset of query.Settings an operator can tune from the
// environment without touching call sites. Zero values are left alone by
// Apply, so an unset override never clobbers a value the caller already
// set programmatically.
type Overrides struct {
	MaxConcurrency  int           `yaml:"max_concurrency,omitempty" env:"MAX_CONCURRENCY,overwrite"`
	BufferSize      int           `yaml:"buffer_size,omitempty" env:"BUFFER_SIZE,overwrite"`
	PreserveOrder   *bool         `yaml:"preserve_order,omitempty" env:"PRESERVE_ORDER,overwrite,noinit"`
	ContinueOnError *bool         `yaml:"continue_on_error,omitempty" env:"CONTINUE_ON_ERROR,overwrite,noinit"`
	Timeout         time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT,overwrite"`
}

// Validate implements cfgloader.Validatable.
func (o *Overrides) Validate() error {
	if o.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", o.MaxConcurrency)
	}
	if o.BufferSize < 0 {
		return fmt.Errorf("buffer_size must not be negative, got %d", o.BufferSize)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// Load reads Overrides from YAML bytes (optional) and environment
// variables prefixed "APQE_", following cfgloader.Load's layering order:
// existing struct values, then YAML, then env.
func Load(ctx context.Context, yamlBytes []byte) (*Overrides, error) {
	var o Overrides
	opts := []cfgloader.Option{cfgloader.WithEnvPrefix("APQE_")}
	if yamlBytes != nil {
		opts = append(opts, cfgloader.WithYAML(yamlBytes))
	}
	if err := cfgloader.Load(ctx, &o, opts...); err != nil {
		return nil, fmt.Errorf("failed to load query settings overrides: %w", err)
	}
	return &o, nil
}

// Apply layers o onto base, returning a copy of base with every
// explicitly-set override applied. MaxConcurrency, BufferSize, and
// Timeout are applied only when non-zero; PreserveOrder and
// ContinueOnError (pointer fields, so "unset" is distinguishable from
// "set to false") are applied whenever non-nil.
func (o *Overrides) Apply(base query.Settings) query.Settings {
	out := base
	if o.MaxConcurrency != 0 {
		out.MaxConcurrency = o.MaxConcurrency
	}
	if o.BufferSize != 0 {
		out.BufferSize = o.BufferSize
	}
	if o.PreserveOrder != nil {
		out.PreserveOrder = pointer.Deref(o.PreserveOrder)
	}
	if o.ContinueOnError != nil {
		out.ContinueOnError = pointer.Deref(o.ContinueOnError)
	}
	if o.Timeout != 0 {
		out.Timeout = o.Timeout
	}
	return out
}
