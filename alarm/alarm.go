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

// Package alarm arms a one-shot wall clock alarm with second resolution
// and exposes it as a flag to poll. On Linux it is backed by
// ITIMER_REAL and SIGALRM, so the clock driving it is the coarse OS
// wall clock, not the monotonic source used by package stopwatch; the
// two may drift relative to each other and callers comparing them must
// use wide tolerance bands.
//
// The OS facility is process-wide and singular: at most one alarm is
// pending at a time across the whole process, and arming a new one
// replaces the pending one. Create a single Service and share it.
package alarm

import (
	"sync"
	"sync/atomic"
)

// backend is the platform alarm facility.
type backend interface {
	// arm requests a single firing after the given number of seconds,
	// replacing any pending request. Zero means "as soon as possible".
	arm(seconds uint) error
	close() error
}

// Service owns the process alarm facility and the fired flag.
type Service struct {
	fired atomic.Bool
	mu    sync.Mutex
	b     backend
}

// New initialises the alarm facility. Call Close when done with it.
func New() *Service {
	s := &Service{}
	s.b = newBackend(func() { s.fired.Store(true) })
	return s
}

// Set requests the fired flag to be raised after roughly seconds
// seconds. Zero asks for "as soon as possible", which is still
// asynchronous: the flag may or may not be up by the next poll.
// A non-zero request is guaranteed not to have fired by the time Set
// returns. Setting while another request is pending replaces it
// (last-write-wins) and lowers the flag.
func (s *Service) Set(seconds uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired.Store(false)
	return s.b.arm(seconds)
}

// Fired reports whether the alarm went off since the last Set or Clear.
func (s *Service) Fired() bool {
	return s.fired.Load()
}

// Clear lowers the fired flag.
func (s *Service) Clear() {
	s.fired.Store(false)
}

// Close disarms any pending alarm and releases the facility.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.close()
}
