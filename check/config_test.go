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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	c.Margin = 0
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.PollLimit = -1
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.AlarmEarlyBound = c.AlarmLateBound
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.DelayIntermediate = c.DelayFinal
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.DelayFinal = 0
	require.Error(t, c.Validate())
}

func TestReadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "delaycheck.yaml")
	data := `
margin: 20ms
delay_intermediate: 40ms
delay_final: 160ms
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0644))
	c, err := ReadConfig(cfgPath)
	require.NoError(t, err)
	// overrides applied
	require.Equal(t, 20*time.Millisecond, c.Margin)
	require.Equal(t, 40*time.Millisecond, c.DelayIntermediate)
	require.Equal(t, 160*time.Millisecond, c.DelayFinal)
	// defaults preserved
	require.Equal(t, DefaultConfig().PollLimit, c.PollLimit)
	require.Equal(t, DefaultConfig().AlarmLateBound, c.AlarmLateBound)
}

func TestReadConfigInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "delaycheck.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("margin: -5ms\n"), 0644))
	_, err := ReadConfig(cfgPath)
	require.Error(t, err)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
