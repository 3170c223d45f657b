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

package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAlarmZeroFiresSoon(t *testing.T) {
	s := New()
	defer s.Close()
	require.NoError(t, s.Set(0))
	deadline := time.Now().Add(100 * time.Millisecond)
	for !s.Fired() {
		if time.Now().After(deadline) {
			t.Fatal("zero-second alarm did not fire within 100ms")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAlarmOneSecondNotImmediate(t *testing.T) {
	s := New()
	defer s.Close()
	require.NoError(t, s.Set(1))
	require.False(t, s.Fired())

	start := time.Now()
	for !s.Fired() {
		if time.Since(start) > 2*time.Second {
			t.Fatal("one-second alarm did not fire within 2s")
		}
		time.Sleep(10 * time.Millisecond)
	}
	elapsed := time.Since(start)
	// second-resolution facility, generous band
	require.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
	require.LessOrEqual(t, elapsed, 1900*time.Millisecond)
}

func TestAlarmClear(t *testing.T) {
	s := New()
	defer s.Close()
	require.NoError(t, s.Set(0))
	deadline := time.Now().Add(100 * time.Millisecond)
	for !s.Fired() {
		if time.Now().After(deadline) {
			t.Fatal("zero-second alarm did not fire within 100ms")
		}
		time.Sleep(time.Millisecond)
	}
	s.Clear()
	require.False(t, s.Fired())
}

func TestAlarmReplacePending(t *testing.T) {
	s := New()
	defer s.Close()
	require.NoError(t, s.Set(10))
	require.False(t, s.Fired())
	// last write wins
	require.NoError(t, s.Set(0))
	deadline := time.Now().Add(100 * time.Millisecond)
	for !s.Fired() {
		if time.Now().After(deadline) {
			t.Fatal("replacement alarm did not fire within 100ms")
		}
		time.Sleep(time.Millisecond)
	}
}
