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
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/opentimetools/timekit/alarm"
)

func testConfig() *Config {
	c := DefaultConfig()
	// keep the delay checks short, the alarm checks dominate anyway
	c.DelayIntermediate = 20 * time.Millisecond
	c.DelayFinal = 80 * time.Millisecond
	return c
}

func TestCheckerRun(t *testing.T) {
	al := alarm.New()
	defer al.Close()
	c := NewChecker(testConfig(), al)
	r := c.Run()
	require.Len(t, r.Results, 7)
	for _, res := range r.Results {
		require.Equal(t, OK, res.Status, "%s: %s", res.Name, res.Msg)
	}
	if t.Failed() {
		t.Logf("full report:\n%s", spew.Sdump(r))
	}
	require.NotZero(t, r.Jitter.Samples)
	require.Equal(t, 0, r.Failed())
}

func TestCheckerLiveness(t *testing.T) {
	al := alarm.New()
	defer al.Close()
	cfg := testConfig()
	// a cap this low is guaranteed to be exhausted before the final
	// threshold passes
	cfg.PollLimit = 1
	c := NewChecker(cfg, al)
	res := c.checkDelayWindow()
	require.Equal(t, CRITICAL, res.Status, res.Msg)
}

func TestCheckerDelayChecks(t *testing.T) {
	al := alarm.New()
	defer al.Close()
	c := NewChecker(testConfig(), al)

	res := c.checkDelayCancelled()
	require.Equal(t, OK, res.Status, res.Msg)

	res = c.checkDelayWindow()
	require.Equal(t, OK, res.Status, res.Msg)

	res = c.checkDelayZeroIntermediate()
	require.Equal(t, OK, res.Status, res.Msg)
}

func TestCheckerStopwatchChecks(t *testing.T) {
	al := alarm.New()
	defer al.Close()
	c := NewChecker(testConfig(), al)

	res := c.checkStopwatchReset()
	require.Equal(t, OK, res.Status, res.Msg)

	res = c.checkStopwatchOrdering()
	require.Equal(t, OK, res.Status, res.Msg)
}

func TestCheckerAlarmChecks(t *testing.T) {
	al := alarm.New()
	defer al.Close()
	c := NewChecker(testConfig(), al)

	res := c.checkAlarmZero()
	require.Equal(t, OK, res.Status, res.Msg)
	require.False(t, al.Fired(), "flag must be cleared after the check")

	res = c.checkAlarmOneSecond()
	require.Equal(t, OK, res.Status, res.Msg)
}

func TestCheckWithinBand(t *testing.T) {
	res := checkWithinBand("band", 50*time.Millisecond, 0, 100*time.Millisecond, "")
	require.Equal(t, OK, res.Status)

	res = checkWithinBand("band", 150*time.Millisecond, 0, 100*time.Millisecond, "too slow")
	require.Equal(t, FAIL, res.Status)
	require.Contains(t, res.Msg, "too slow")
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "OK", OK.String())
	require.Equal(t, "CRITICAL", CRITICAL.String())
}
