/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package waiter

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/pgdriver/protocol"
)

// cooperativePollMillis is the interval between zero-timeout polls: between
// checks the goroutine waits on a time.Ticker, selectable against ctx,
// instead of parking in a long poll(2) call.
const cooperativePollMillis = 5 * time.Millisecond

// Cooperative is a Waiter for callers that drive many connections from a
// shared goroutine pool: it polls with a zero timeout and waits on a ticker
// between attempts, so the calling goroutine is parked in the Go scheduler
// rather than in a syscall, and it honors ctx cancellation promptly.
type Cooperative struct{}

// NewCooperative returns a Cooperative Waiter.
func NewCooperative() *Cooperative {
	return &Cooperative{}
}

func (c *Cooperative) Wait(ctx context.Context, fd int, event protocol.WaitEvent) (protocol.ReadyEvent, error) {
	var events int16
	switch event {
	case protocol.WaitReadable:
		events = unix.POLLIN
	case protocol.WaitWritable:
		events = unix.POLLOUT
	case protocol.WaitNone:
		return protocol.ReadyNone, nil
	default:
		return protocol.ReadyNone, ErrorInvalidEvent.Error(nil)
	}

	pfd := []unix.PollFd{{Fd: int32(fd), Events: events}}
	ticker := time.NewTicker(cooperativePollMillis)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return protocol.ReadyNone, ErrorContextDone.Error(ctx.Err())
		case <-ticker.C:
		}

		n, err := unix.Poll(pfd, 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return protocol.ReadyNone, ErrorPollFailed.Error(err)
		}
		if n == 0 {
			continue
		}

		var ready protocol.ReadyEvent
		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready |= protocol.ReadyRead
		}
		if pfd[0].Revents&unix.POLLOUT != 0 {
			ready |= protocol.ReadyWrite
		}
		if ready != protocol.ReadyNone {
			return ready, nil
		}
	}
}
