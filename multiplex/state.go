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

// state is the Multiplexer's one-way Open -> Frozen -> Drained lifecycle,
// stored as an atomic.Int32 so Register/Enumerate can check and flip it
// without a full mutex round trip on the hot path.
type state int32

const (
	// stateOpen accepts Register/Unregister; no Enumerate has been called.
	stateOpen state = iota

	// stateFrozen means at least one Enumerate has been called; the
	// producer set is locked, but enumerations may still be draining.
	stateFrozen

	// stateDrained means an enumeration has finished (its producers
	// exhausted, or a failure ended it) and all of its pump goroutines
	// have returned.
	stateDrained
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateFrozen:
		return "frozen"
	case stateDrained:
		return "drained"
	default:
		return "unknown"
	}
}
