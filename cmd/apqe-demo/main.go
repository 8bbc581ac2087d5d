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

// Command apqe-demo reads whitespace-separated words from stdin, fans
// them through a small Map/Filter/FlatMap query, and prints the result
// alongside a run summary. It exists to exercise the query engine's
// flag, config, logging, and metrics wiring end to end.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abcxyz/apqe/cli"
	"github.com/abcxyz/apqe/config"
	"github.com/abcxyz/apqe/errs"
	"github.com/abcxyz/apqe/item"
	"github.com/abcxyz/apqe/logging"
	"github.com/abcxyz/apqe/metrics"
	"github.com/abcxyz/apqe/multicloser"
	"github.com/abcxyz/apqe/query"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	if err := realMain(ctx); err != nil {
		done()
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func realMain(ctx context.Context) error {
	var (
		maxConcurrency  int
		bufferSize      int
		preserveOrder   bool
		continueOnError bool
		timeout         time.Duration
	)

	fs := cli.NewFlagSet()
	logging.RegisterFlags(fs)

	f := fs.NewSection("QUERY OPTIONS")
	f.IntVar(&cli.IntVar{
		Name:    "max-concurrency",
		Target:  &maxConcurrency,
		EnvVar:  "MAX_CONCURRENCY",
		Default: 0,
		Usage:   "Maximum number of in-flight operations per stage (0 means host CPU count).",
	})
	f.IntVar(&cli.IntVar{
		Name:    "buffer-size",
		Target:  &bufferSize,
		EnvVar:  "BUFFER_SIZE",
		Default: 0,
		Usage:   "Per-stage output channel capacity (0 means the query engine's default).",
	})
	f.BoolVar(&cli.BoolVar{
		Name:    "preserve-order",
		Target:  &preserveOrder,
		EnvVar:  "PRESERVE_ORDER",
		Default: true,
		Usage:   "Reassemble output into source order instead of completion order.",
	})
	f.BoolVar(&cli.BoolVar{
		Name:    "continue-on-error",
		Target:  &continueOnError,
		EnvVar:  "CONTINUE_ON_ERROR",
		Default: false,
		Usage:   "Drop and report failed items instead of failing the whole run.",
	})
	f.DurationVar(&cli.DurationVar{
		Name:    "timeout",
		Target:  &timeout,
		EnvVar:  "TIMEOUT",
		Default: 0,
		Usage:   "Overall run deadline (0 means no deadline).",
	})

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	logger := logging.NewFromFlags()
	ctx = logging.WithLogger(ctx, logger)

	closer := multicloser.New()
	defer multicloser.Close(closer)
	closer.Append(func() { _ = logger.Sync() })

	overrides, err := config.Load(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load config overrides: %w", err)
	}

	settings := overrides.Apply(query.Settings{
		MaxConcurrency:  maxConcurrency,
		BufferSize:      bufferSize,
		PreserveOrder:   preserveOrder,
		ContinueOnError: continueOnError,
		Timeout:         timeout,
	})

	counters := metrics.New()
	settings.Sink = sinkPair{counters.Sink(), &errs.LogSink{Logger: logger}}

	words := readWords(os.Stdin, counters)
	q := query.New[string](words)
	q = q.WithSettings(settings)

	filtered := query.Filter(q, func(_ context.Context, w string) (bool, error) {
		return len(w) > 0, nil
	})
	upper := query.Map(filtered, func(_ context.Context, w string) (string, error) {
		return strings.ToUpper(w), nil
	})
	letters := query.FlatMap(upper, func(_ context.Context, w string) ([]string, error) {
		out := make([]string, 0, len(w))
		for _, r := range w {
			out = append(out, string(r))
		}
		return out, nil
	})

	src, release, err := query.Enumerate(ctx, letters)
	if err != nil {
		return fmt.Errorf("failed to start query: %w", err)
	}
	closer.Append(func() { release() })

	for {
		r, ok, nextErr := src.Next(ctx)
		if nextErr != nil {
			counters.MarkTerminatedEarly()
			logger.Warnw("run ended early", "error", nextErr)
			break
		}
		if !ok {
			counters.MarkCompleted(time.Now().UTC())
			break
		}
		counters.RecordEmitted()
		fmt.Println(r)
	}

	fmt.Fprintln(os.Stderr, counters.String())
	return nil
}

// readWords adapts stdin into an item.Source[string], recording every raw
// token pulled off it regardless of what survives downstream.
func readWords(r *os.File, counters *metrics.Counters) item.Source[string] {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	return item.SourceFunc[string](func(ctx context.Context) (string, bool, error) {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if !scanner.Scan() {
			return "", false, scanner.Err()
		}
		counters.RecordRaw()
		return scanner.Text(), true, nil
	})
}

// sinkPair fans a single errs.Event out to two sinks, so the run is both
// counted and logged.
type sinkPair [2]errs.Sink

// Report implements errs.Sink.
func (p sinkPair) Report(e *errs.Event) {
	for _, s := range p {
		if s != nil {
			s.Report(e)
		}
	}
}
