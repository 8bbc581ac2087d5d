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

package pool

// Case tags one FlatMap worker emission as either a real sub-item
// (CaseValue) or the end-of-sub-sequence sentinel (CaseEnd), so the
// dispatcher can build the corresponding merge.Entry without a type
// switch over the payload itself.
type Case[T any] struct {
	Category int
	Payload  T
}

const (
	// CaseValue tags a Case carrying a real sub-item.
	CaseValue = 0

	// CaseEnd tags a Case marking the end of one source item's
	// sub-sequence; Payload is unused.
	CaseEnd = 1
)
