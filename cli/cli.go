// Copyright 2023 The Authors (see AUTHORS file)
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

// Package cli provides the flag-parsing building block shared by the
// engine's demo binaries. A [FlagSet] groups related flags into named
// sections so `-help` output stays organized as a binary grows.
//
//	fs := cli.NewFlagSet()
//	f := fs.NewSection("QUERY OPTIONS")
//	f.IntVar(&cli.IntVar{
//	  Name:    "max-concurrency",
//	  Target:  &cfg.MaxConcurrency,
//	  EnvVar:  "MAX_CONCURRENCY",
//	  Default: 0,
//	  Usage:   "Maximum number of in-flight operations.",
//	})
//	if err := fs.Parse(os.Args[1:]); err != nil {
//	  // handle error
//	}
package cli
