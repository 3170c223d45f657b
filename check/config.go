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
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config tunes the timing checks
type Config struct {
	Margin            time.Duration `yaml:"margin"`             // slack between starting the reference stopwatch and the subject under test
	PollLimit         int           `yaml:"poll_limit"`         // max iterations of any busy-poll loop before we declare a liveness failure
	ShortThreshold    time.Duration `yaml:"short_threshold"`    // upper bound for readings taken "immediately after" an action
	AlarmEarlyBound   time.Duration `yaml:"alarm_early_bound"`  // earliest acceptable firing of a one-second alarm
	AlarmLateBound    time.Duration `yaml:"alarm_late_bound"`   // latest acceptable firing of a one-second alarm
	DelayIntermediate time.Duration `yaml:"delay_intermediate"` // intermediate threshold used by the delay window check
	DelayFinal        time.Duration `yaml:"delay_final"`        // final threshold used by the delay window check
}

// DefaultConfig returns the bands we expect to hold on a host that is
// not heavily oversubscribed. The alarm bounds are deliberately wide:
// the alarm facility runs off a coarse second-resolution wall clock
// while the reference stopwatch is monotonic, and the two may drift.
func DefaultConfig() *Config {
	return &Config{
		Margin:            10 * time.Millisecond,
		PollLimit:         100_000_000,
		ShortThreshold:    100 * time.Millisecond,
		AlarmEarlyBound:   900 * time.Millisecond,
		AlarmLateBound:    1500 * time.Millisecond,
		DelayIntermediate: 50 * time.Millisecond,
		DelayFinal:        200 * time.Millisecond,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.Margin <= 0 {
		return fmt.Errorf("margin must be positive")
	}
	if c.PollLimit <= 0 {
		return fmt.Errorf("poll_limit must be positive")
	}
	if c.ShortThreshold <= 0 {
		return fmt.Errorf("short_threshold must be positive")
	}
	if c.AlarmEarlyBound >= c.AlarmLateBound {
		return fmt.Errorf("alarm_early_bound must be below alarm_late_bound")
	}
	if c.DelayFinal <= 0 {
		return fmt.Errorf("delay_final must be positive")
	}
	if c.DelayIntermediate <= 0 || c.DelayIntermediate >= c.DelayFinal {
		return fmt.Errorf("delay_intermediate must be positive and below delay_final")
	}
	return nil
}

// ReadConfig reads a yaml config file on top of the defaults
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %q: %w", path, err)
	}
	return c, nil
}
