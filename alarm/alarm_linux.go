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
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"
)

// itimerBackend drives the flag from ITIMER_REAL via SIGALRM.
type itimerBackend struct {
	sigs chan os.Signal
	done chan struct{}
}

func newBackend(fire func()) backend {
	b := &itimerBackend{
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(b.sigs, unix.SIGALRM)
	go func() {
		for {
			select {
			case <-b.sigs:
				fire()
			case <-b.done:
				return
			}
		}
	}()
	return b
}

func (b *itimerBackend) arm(seconds uint) error {
	d := time.Duration(seconds) * time.Second
	if d == 0 {
		// a zero itimerval disarms, so ask for the shortest interval
		// the facility accepts instead
		d = time.Microsecond
	}
	it := unix.Itimerval{Value: unix.NsecToTimeval(d.Nanoseconds())}
	_, err := unix.Setitimer(unix.ItimerReal, it)
	return err
}

func (b *itimerBackend) close() error {
	_, err := unix.Setitimer(unix.ItimerReal, unix.Itimerval{})
	signal.Stop(b.sigs)
	close(b.done)
	return err
}
