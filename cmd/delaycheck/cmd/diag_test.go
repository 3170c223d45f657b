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

package cmd

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/opentimetools/timekit/check"
)

func TestPrintResults(t *testing.T) {
	r := &check.Report{Results: []check.Result{
		{Name: "a", Status: check.OK, Msg: "fine"},
		{Name: "b", Status: check.WARN, Msg: "meh"},
		{Name: "c", Status: check.FAIL, Msg: "bad"},
	}}
	require.Equal(t, 2, printResults(r))

	r.Results = append(r.Results, check.Result{Name: "d", Status: check.CRITICAL, Msg: "stuck"})
	require.Equal(t, 127, printResults(r))
}

func TestMonitorMetricsUpdate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMonitorMetrics(reg)
	r := &check.Report{Results: []check.Result{
		{Name: "a", Status: check.OK},
		{Name: "b", Status: check.FAIL},
		{Name: "c", Status: check.WARN},
	}}
	m.update(r)
	require.Equal(t, float64(2), testutil.ToFloat64(m.checksOK))
	require.Equal(t, float64(1), testutil.ToFloat64(m.checksFailed))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs))
}
