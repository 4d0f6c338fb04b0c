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

	"golang.org/x/sys/unix"

	"github.com/sabouaram/pgdriver/protocol"
)

// pollIntervalMillis bounds how long one unix.Poll call blocks before
// Blocking rechecks ctx for cancellation. It does not bound total wait
// time: Blocking loops until event is satisfied or ctx is done.
const pollIntervalMillis = 250

// Blocking is a Waiter that parks the calling goroutine in a real
// poll(2) syscall via golang.org/x/sys/unix. It is the right choice for a
// driver used synchronously, one connection per goroutine.
type Blocking struct{}

// NewBlocking returns a Blocking Waiter.
func NewBlocking() *Blocking {
	return &Blocking{}
}

func (b *Blocking) Wait(ctx context.Context, fd int, event protocol.WaitEvent) (protocol.ReadyEvent, error) {
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

	for {
		select {
		case <-ctx.Done():
			return protocol.ReadyNone, ErrorContextDone.Error(ctx.Err())
		default:
		}

		n, err := unix.Poll(pfd, pollIntervalMillis)
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
