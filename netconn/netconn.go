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

// Package netconn dials network connections with an extension point
// between socket creation and the connect attempt. The hook is where
// protocol-specific socket configuration goes: traffic marking, bind
// options, anything that must be in place before the first packet.
package netconn

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/opentimetools/timekit/dscp"
)

// HookFunc runs right after the OS socket is opened and before the
// connect attempt proceeds. network and address are the resolved pair
// being dialed. Returning an error aborts the dial and the error
// surfaces from Dial exactly like a connect failure would.
type HookFunc func(network, address string, c syscall.RawConn) error

// Dialer dials connections, running PreConnect on each fresh socket.
// A nil PreConnect is a no-op.
type Dialer struct {
	PreConnect HookFunc
	Timeout    time.Duration
	LocalAddr  net.Addr
}

// DialContext opens a socket, runs the PreConnect hook on it and
// proceeds with the connect attempt. When the hook fails the connect
// step is skipped entirely.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	nd := net.Dialer{
		Timeout:   d.Timeout,
		LocalAddr: d.LocalAddr,
		Control:   d.PreConnect,
	}
	return nd.DialContext(ctx, network, address)
}

// Dial is DialContext with a background context.
func (d *Dialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

// WithDSCP returns a hook that marks all traffic on the socket with
// the given DSCP value before it connects.
func WithDSCP(code int) HookFunc {
	return func(network, address string, c syscall.RawConn) error {
		host, _, err := net.SplitHostPort(address)
		if err != nil {
			return fmt.Errorf("parsing dial address %q: %w", address, err)
		}
		// the hook runs after resolution, so the host is numeric
		ip := net.ParseIP(host)
		if ip == nil {
			return fmt.Errorf("dial address %q is not an IP", host)
		}
		var serr error
		if err := c.Control(func(fd uintptr) {
			serr = dscp.Enable(int(fd), ip, code)
		}); err != nil {
			return err
		}
		if serr != nil {
			return fmt.Errorf("setting DSCP %d: %w", code, serr)
		}
		return nil
	}
}

// ConnFd returns the file descriptor behind a socket-based connection
func ConnFd(conn syscall.Conn) (int, error) {
	sc, err := conn.SyscallConn()
	if err != nil {
		return -1, err
	}
	intfd := -1
	err = sc.Control(func(fd uintptr) {
		intfd = int(fd)
	})
	if err != nil {
		return -1, err
	}
	return intfd, nil
}
