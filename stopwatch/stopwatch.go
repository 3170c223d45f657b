/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stopwatch provides elapsed-time measurement from a monotonic
// clock source, immune to wall clock steps.
package stopwatch

import (
	"time"
)

// Stopwatch reports time elapsed since the last reset.
// Readings between resets are non-decreasing.
// Not safe for concurrent use; each caller owns its own instance.
type Stopwatch struct {
	start time.Duration
}

// New returns a started Stopwatch.
func New() *Stopwatch {
	s := &Stopwatch{}
	s.Reset()
	return s
}

// Reset captures the current instant as the new zero point.
func (s *Stopwatch) Reset() {
	s.start = monotonic()
}

// Elapsed returns time passed since the last reset.
func (s *Stopwatch) Elapsed() time.Duration {
	return monotonic() - s.start
}

// ElapsedMS returns whole milliseconds passed since the last reset.
func (s *Stopwatch) ElapsedMS() uint64 {
	return uint64(s.Elapsed().Milliseconds())
}
