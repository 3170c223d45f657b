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

package check

import (
	"time"

	"github.com/opentimetools/timekit/delay"
	"github.com/opentimetools/timekit/stopwatch"
)

// Bracket is a pair of reference stopwatch readings taken immediately
// before and after observing the subject. The observation happened at
// some unknown moment within it; under scheduler preemption the two
// readings can be far apart, which is exactly why no check in this
// package ever asserts an exact observation time.
type Bracket struct {
	Before time.Duration
	After  time.Duration
}

// Width returns the span of the bracket.
func (b Bracket) Width() time.Duration {
	return b.After - b.Before
}

// observe reads a value from the subject between two reference
// stopwatch readings.
func observe[T any](ref *stopwatch.Stopwatch, read func() T) (T, Bracket) {
	br := Bracket{Before: ref.Elapsed()}
	v := read()
	br.After = ref.Elapsed()
	return v, br
}

// statusAt is what a healthy delay with the given thresholds reports
// once its own elapsed time has reached e.
func statusAt(intermediate, final, e time.Duration) delay.Status {
	if final == 0 {
		return delay.Cancelled
	}
	if e >= final {
		return delay.FinalReached
	}
	if e >= intermediate {
		return delay.IntermediateReached
	}
	return delay.NotReached
}

// statusBounds computes the earliest and latest statuses consistent
// with an observation made somewhere within the bracket. The reference
// stopwatch starts before the subject, so subject elapsed time at the
// observation lies within [Before-margin, After], margin covering the
// startup gap between the two.
func statusBounds(intermediate, final time.Duration, br Bracket, margin time.Duration) (lo, hi delay.Status) {
	early := br.Before - margin
	if early < 0 {
		early = 0
	}
	return statusAt(intermediate, final, early), statusAt(intermediate, final, br.After)
}
