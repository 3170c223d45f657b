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

// Package delay implements a two-phase countdown on top of package
// stopwatch: an intermediate threshold followed by a final one, polled
// as a discrete status.
package delay

import (
	"time"

	"github.com/opentimetools/timekit/stopwatch"
)

// Status of a Delay at some point in time. Over repeated polling the
// status only ever moves forward in the order
// NotReached < IntermediateReached < FinalReached.
type Status int

// possible Delay statuses
const (
	// Cancelled is reported by delays created with a zero final
	// threshold. It is decided at creation and never changes.
	Cancelled Status = iota
	// NotReached means the intermediate threshold is still ahead.
	NotReached
	// IntermediateReached means the intermediate threshold has passed
	// but the final one has not.
	IntermediateReached
	// FinalReached means the final threshold has passed.
	FinalReached
)

var statusToString = map[Status]string{
	Cancelled:           "CANCELLED",
	NotReached:          "NOT_REACHED",
	IntermediateReached: "INTERMEDIATE_REACHED",
	FinalReached:        "FINAL_REACHED",
}

func (s Status) String() string {
	return statusToString[s]
}

// Delay is a snapshot of a starting instant and two thresholds.
// Status is a pure function of time elapsed since creation, so there
// is no state to keep in sync and polling is idempotent.
type Delay struct {
	sw           *stopwatch.Stopwatch
	intermediate time.Duration
	final        time.Duration
}

// Set captures the current instant and returns a Delay with the given
// thresholds. A zero final threshold makes the Delay permanently
// Cancelled. If intermediate exceeds final, final is authoritative and
// the intermediate stage is simply never observed.
func Set(intermediate, final time.Duration) *Delay {
	return &Delay{
		sw:           stopwatch.New(),
		intermediate: intermediate,
		final:        final,
	}
}

// Status reports which thresholds have passed.
func (d *Delay) Status() Status {
	if d.final == 0 {
		return Cancelled
	}
	elapsed := d.sw.Elapsed()
	switch {
	case elapsed >= d.final:
		return FinalReached
	case elapsed >= d.intermediate:
		return IntermediateReached
	default:
		return NotReached
	}
}

// Elapsed returns time passed since the Delay was set.
func (d *Delay) Elapsed() time.Duration {
	return d.sw.Elapsed()
}
