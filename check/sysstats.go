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
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// SysSnapshot captures scheduler-relevant process stats, so a run with
// missed bounds can be read alongside the load it ran under.
type SysSnapshot struct {
	CPUPct     float64
	RSS        uint64
	NumThreads int32
	Goroutines int
}

// CollectSysStats gathers cpu and memory stats for the current process
func CollectSysStats() (*SysSnapshot, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	s := &SysSnapshot{Goroutines: runtime.NumGoroutine()}
	if val, err := proc.Percent(0); err == nil {
		s.CPUPct = val
	}
	if val, err := proc.MemoryInfo(); err == nil {
		s.RSS = val.RSS
	}
	if val, err := proc.NumThreads(); err == nil {
		s.NumThreads = val
	}
	return s, nil
}
