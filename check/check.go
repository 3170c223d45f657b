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

// Package check verifies the behaviour of live stopwatch, delay and
// alarm instances under busy-wait polling.
//
// There is no ground-truth clock to compare against, so every
// observation is bracketed by two readings of an independent reference
// stopwatch and asserted against the set of values that would be valid
// anywhere within the bracket, widened by a configured margin. Exact
// time assertions would flake the moment the scheduler preempts a poll
// loop; bound-based ones do not.
package check

import (
	"fmt"
	"time"

	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"

	"github.com/opentimetools/timekit/alarm"
	"github.com/opentimetools/timekit/delay"
	"github.com/opentimetools/timekit/stopwatch"
)

// Status of a single check
type Status int

// possible check results
const (
	OK Status = iota
	WARN
	FAIL
	// CRITICAL marks a liveness failure: a poll loop hit its iteration
	// cap because the subject never advanced. Kept apart from FAIL so
	// a hung clock is not mistaken for a missed bound.
	CRITICAL
)

var statusToString = map[Status]string{
	OK:       "OK",
	WARN:     "WARN",
	FAIL:     "FAIL",
	CRITICAL: "CRITICAL",
}

func (s Status) String() string {
	return statusToString[s]
}

// Result of a single check
type Result struct {
	Name   string
	Status Status
	Msg    string
}

// JitterStats summarises observation bracket widths seen during a run.
// Wide brackets mean the host preempted us mid-observation.
type JitterStats struct {
	Samples uint64
	Mean    time.Duration
	Stddev  time.Duration
	Max     time.Duration
}

// Report is the outcome of a full run
type Report struct {
	Results []Result
	Jitter  JitterStats
	Sys     *SysSnapshot // nil if collection failed
}

// Failed counts results that are neither OK nor WARN
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == FAIL || res.Status == CRITICAL {
			n++
		}
	}
	return n
}

// how many back-to-back readings we take when probing monotonicity
const monotonicSamples = 10000

// Checker drives the subjects and collects results. The alarm service
// is injected rather than created here: the OS alarm facility is
// process-wide and whoever owns it must hand it over.
type Checker struct {
	cfg    *Config
	al     *alarm.Service
	jitter *welford.Stats
}

// NewChecker returns a Checker using the given config and alarm service
func NewChecker(cfg *Config, al *alarm.Service) *Checker {
	return &Checker{cfg: cfg, al: al, jitter: welford.New()}
}

// Run executes all checks and returns the combined report
func (c *Checker) Run() *Report {
	r := &Report{}
	r.Results = append(r.Results,
		c.checkStopwatchReset(),
		c.checkStopwatchOrdering(),
		c.checkDelayCancelled(),
		c.checkDelayWindow(),
		c.checkDelayZeroIntermediate(),
		c.checkAlarmZero(),
		c.checkAlarmOneSecond(),
	)
	if c.jitter.Count() > 0 {
		r.Jitter = JitterStats{
			Samples: c.jitter.Count(),
			Mean:    time.Duration(c.jitter.Mean()),
			Stddev:  time.Duration(c.jitter.Stddev()),
			Max:     time.Duration(c.jitter.Max()),
		}
	}
	sys, err := CollectSysStats()
	if err != nil {
		log.Errorf("collecting process stats: %v", err)
	} else {
		r.Sys = sys
	}
	return r
}

// checkWithinBand checks value against an inclusive band
func checkWithinBand[T constraints.Ordered](name string, value, lo, hi T, explanation string) Result {
	if value < lo || value > hi {
		return Result{
			Name:   name,
			Status: FAIL,
			Msg:    fmt.Sprintf("%v is outside [%v, %v]. %s", value, lo, hi, explanation),
		}
	}
	return Result{
		Name:   name,
		Status: OK,
		Msg:    fmt.Sprintf("%v is within [%v, %v]", value, lo, hi),
	}
}

func (c *Checker) checkStopwatchReset() Result {
	const name = "stopwatch/reset"
	log.Debugf("running %s", name)
	s := stopwatch.New()
	if got := s.Elapsed(); got >= c.cfg.ShortThreshold {
		return Result{name, FAIL, fmt.Sprintf("fresh stopwatch reads %v, expected below %v", got, c.cfg.ShortThreshold)}
	}
	prev := s.Elapsed()
	for i := 0; i < monotonicSamples; i++ {
		cur := s.Elapsed()
		if cur < prev {
			return Result{name, FAIL, fmt.Sprintf("reading went back from %v to %v", prev, cur)}
		}
		prev = cur
	}
	s.Reset()
	if got := s.Elapsed(); got >= c.cfg.ShortThreshold {
		return Result{name, FAIL, fmt.Sprintf("stopwatch reads %v right after reset, expected below %v", got, c.cfg.ShortThreshold)}
	}
	return Result{name, OK, fmt.Sprintf("%d readings non-decreasing, reset starts near zero", monotonicSamples)}
}

func (c *Checker) checkStopwatchOrdering() Result {
	const name = "stopwatch/ordering"
	log.Debugf("running %s", name)
	older := stopwatch.New()
	// put a measurable gap between the two starts
	for i := 0; older.Elapsed() < time.Millisecond; i++ {
		if i >= c.cfg.PollLimit {
			return Result{name, CRITICAL, livenessMsg("stopwatch never advanced past 1ms")}
		}
	}
	newer := stopwatch.New()
	for i := 0; i < monotonicSamples; i++ {
		o, n := older.Elapsed(), newer.Elapsed()
		if o <= n {
			return Result{name, FAIL, fmt.Sprintf("earlier-started stopwatch reads %v, not above later-started one at %v", o, n)}
		}
	}
	return Result{name, OK, "earlier-started stopwatch always reads larger"}
}

func (c *Checker) checkDelayCancelled() Result {
	const name = "delay/cancelled"
	log.Debugf("running %s", name)
	zero := delay.Set(0, 0)
	nonzero := delay.Set(c.cfg.DelayIntermediate, 0)
	for i := 0; i < monotonicSamples; i++ {
		if st := zero.Status(); st != delay.Cancelled {
			return Result{name, FAIL, fmt.Sprintf("delay(0, 0) reports %s, expected %s", st, delay.Cancelled)}
		}
		if st := nonzero.Status(); st != delay.Cancelled {
			return Result{name, FAIL, fmt.Sprintf("delay(%v, 0) reports %s, expected %s", c.cfg.DelayIntermediate, st, delay.Cancelled)}
		}
	}
	return Result{name, OK, "zero final threshold always reports cancelled"}
}

// checkDelayWindow polls a delay through both thresholds and verifies
// every observed status against its bracket bounds, that statuses never
// regress, and that the intermediate stage is actually seen between the
// two thresholds.
func (c *Checker) checkDelayWindow() Result {
	name := fmt.Sprintf("delay/window %v:%v", c.cfg.DelayIntermediate, c.cfg.DelayFinal)
	log.Debugf("running %s", name)
	intermediate, final := c.cfg.DelayIntermediate, c.cfg.DelayFinal
	ref := stopwatch.New()
	d := delay.Set(intermediate, final)

	prev := delay.NotReached
	sawIntermediate := false
	for i := 0; i < c.cfg.PollLimit; i++ {
		st, br := observe(ref, d.Status)
		c.jitter.Add(float64(br.Width()))
		lo, hi := statusBounds(intermediate, final, br, c.cfg.Margin)
		if st < lo || st > hi {
			return Result{name, FAIL, fmt.Sprintf("observed %s within bracket [%v, %v], valid range %s..%s", st, br.Before, br.After, lo, hi)}
		}
		if st < prev {
			return Result{name, FAIL, fmt.Sprintf("status regressed from %s to %s", prev, st)}
		}
		prev = st
		if st == delay.IntermediateReached {
			sawIntermediate = true
		}
		if st == delay.FinalReached {
			if !sawIntermediate {
				return Result{name, FAIL, "final threshold reached without ever observing the intermediate stage"}
			}
			return Result{name, OK, fmt.Sprintf("both stages observed in order, final at reference %v", br.After)}
		}
	}
	return Result{name, CRITICAL, livenessMsg("delay never reached its final threshold")}
}

// checkDelayZeroIntermediate verifies that a zero intermediate
// threshold is passed from the very first poll.
func (c *Checker) checkDelayZeroIntermediate() Result {
	name := fmt.Sprintf("delay/zero-intermediate 0:%v", c.cfg.DelayIntermediate)
	log.Debugf("running %s", name)
	final := c.cfg.DelayIntermediate
	ref := stopwatch.New()
	d := delay.Set(0, final)

	st, br := observe(ref, d.Status)
	c.jitter.Add(float64(br.Width()))
	if st == delay.NotReached {
		return Result{name, FAIL, "first poll reports the zero intermediate threshold as not reached"}
	}
	lo, hi := statusBounds(0, final, br, c.cfg.Margin)
	if st < lo || st > hi {
		return Result{name, FAIL, fmt.Sprintf("observed %s within bracket [%v, %v], valid range %s..%s", st, br.Before, br.After, lo, hi)}
	}
	for i := 0; i < c.cfg.PollLimit; i++ {
		st, br = observe(ref, d.Status)
		c.jitter.Add(float64(br.Width()))
		lo, hi = statusBounds(0, final, br, c.cfg.Margin)
		if st < lo || st > hi {
			return Result{name, FAIL, fmt.Sprintf("observed %s within bracket [%v, %v], valid range %s..%s", st, br.Before, br.After, lo, hi)}
		}
		if st == delay.FinalReached {
			return Result{name, OK, fmt.Sprintf("intermediate stage up from the first poll, final at reference %v", br.After)}
		}
	}
	return Result{name, CRITICAL, livenessMsg("delay never reached its final threshold")}
}

func (c *Checker) checkAlarmZero() Result {
	const name = "alarm/zero"
	log.Debugf("running %s", name)
	defer c.al.Clear()
	ref := stopwatch.New()
	if err := c.al.Set(0); err != nil {
		return Result{name, FAIL, fmt.Sprintf("arming alarm: %v", err)}
	}
	for i := 0; i < c.cfg.PollLimit; i++ {
		fired, br := observe(ref, c.al.Fired)
		c.jitter.Add(float64(br.Width()))
		if fired {
			// br.After is an upper bound on the firing time
			return checkWithinBand(name, br.After, 0, c.cfg.ShortThreshold+c.cfg.Margin,
				"a zero-second alarm should fire almost immediately")
		}
		if br.Before-c.cfg.Margin > c.cfg.ShortThreshold {
			return Result{name, FAIL, fmt.Sprintf("still not fired at reference %v, expected within %v", br.Before, c.cfg.ShortThreshold)}
		}
	}
	return Result{name, CRITICAL, livenessMsg("zero-second alarm never fired")}
}

func (c *Checker) checkAlarmOneSecond() Result {
	const name = "alarm/one-second"
	log.Debugf("running %s", name)
	defer c.al.Clear()
	ref := stopwatch.New()
	if err := c.al.Set(1); err != nil {
		return Result{name, FAIL, fmt.Sprintf("arming alarm: %v", err)}
	}
	fired, br := observe(ref, c.al.Fired)
	c.jitter.Add(float64(br.Width()))
	if fired {
		// hard invariant, no tolerance band applies
		return Result{name, FAIL, fmt.Sprintf("one-second alarm was already fired at reference %v", br.After)}
	}
	for i := 0; i < c.cfg.PollLimit; i++ {
		fired, br = observe(ref, c.al.Fired)
		c.jitter.Add(float64(br.Width()))
		if fired {
			if br.After < c.cfg.AlarmEarlyBound {
				return Result{name, FAIL, fmt.Sprintf("fired by reference %v, before the early bound %v", br.After, c.cfg.AlarmEarlyBound)}
			}
			low := br.Before - c.cfg.Margin
			if low < 0 {
				low = 0
			}
			return checkWithinBand(name, low, 0, c.cfg.AlarmLateBound,
				"the alarm wall clock and the reference stopwatch may drift, but not this much")
		}
		if br.Before-c.cfg.Margin > c.cfg.AlarmLateBound {
			return Result{name, FAIL, fmt.Sprintf("still not fired at reference %v, late bound is %v", br.Before, c.cfg.AlarmLateBound)}
		}
	}
	return Result{name, CRITICAL, livenessMsg("one-second alarm never fired")}
}

func livenessMsg(what string) string {
	return fmt.Sprintf("%s before the poll iteration cap; the subject is stuck, not merely late", what)
}
