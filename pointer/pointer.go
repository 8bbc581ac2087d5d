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

// Package pointer provides generic helpers for converting between values and
// pointers, useful for constructing struct literals with optional fields
// (e.g. the tri-state booleans of config.Overrides) without an intermediate
// variable.
package pointer

// To returns a pointer to the given value.
func To[T any](i T) *T {
	return &i
}

// Deref dereferences the given pointer, returning the zero value of T if the
// pointer is nil.
func Deref[T any](i *T) T {
	if i == nil {
		var zero T
		return zero
	}
	return *i
}
