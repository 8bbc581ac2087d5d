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

package errs

import (
	"sync"

	"go.uber.org/zap"
)

// NopSink discards every event. It is the default Sink when none is
// configured.
type NopSink struct{}

// Report implements Sink.
func (NopSink) Report(*Event) {}

// SliceSink accumulates events in memory, guarded by a mutex since both the
// pool and the multiplexer may report concurrently. It is primarily a test
// double.
type SliceSink struct {
	mu     sync.Mutex
	events []*Event
}

// Report implements Sink.
func (s *SliceSink) Report(e *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a snapshot copy of the events reported so far.
func (s *SliceSink) Events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// LogSink reports events through a structured logger, the shape used by
// the engine's demo binary and by services that don't need in-memory
// accumulation.
type LogSink struct {
	Logger *zap.SugaredLogger
}

// Report implements Sink.
func (s *LogSink) Report(e *Event) {
	logger := s.Logger
	if logger == nil {
		return
	}
	fields := []any{"kind", e.Kind, "message", e.Message}
	if e.SourceName != "" {
		fields = append(fields, "source", e.SourceName)
	}
	if e.HasIndex {
		fields = append(fields, "index", e.Index)
	}
	if e.Cause != nil {
		fields = append(fields, "cause", e.Cause)
	}
	logger.Warnw("query engine error event", fields...)
}
