//go:build !linux

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
	"sync"
	"time"
)

// timerBackend approximates the itimer facility with the runtime timer
// wheel on platforms where we don't reach for setitimer.
type timerBackend struct {
	mu   sync.Mutex
	t    *time.Timer
	fire func()
}

func newBackend(fire func()) backend {
	return &timerBackend{fire: fire}
}

func (b *timerBackend) arm(seconds uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.t != nil {
		b.t.Stop()
	}
	b.t = time.AfterFunc(time.Duration(seconds)*time.Second, b.fire)
	return nil
}

func (b *timerBackend) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.t != nil {
		b.t.Stop()
		b.t = nil
	}
	return nil
}
