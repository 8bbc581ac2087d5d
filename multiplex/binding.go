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

import "github.com/abcxyz/apqe/item"

// binding is one named producer registered with a Multiplexer — the
// ProducerBinding of the design: a source paired with the predicate that
// gates which of its values participate in enumeration.
type binding[T any] struct {
	name      string
	source    item.Source[T]
	predicate func(T) bool
}

func (b *binding[T]) accepts(v T) bool {
	return b.predicate == nil || b.predicate(v)
}
