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

package ioengine

import (
	"github.com/sabouaram/pgdriver/protocol"
)

// ConnectFlow drives protocol.Handle.StartConnect/PollConnect to
// completion. It is the Go rendering of spec's connect_flow generator.
type ConnectFlow struct {
	handle protocol.Handle
	dsn    string
	state  connectState
	err    error
}

// NewConnectFlow returns a flow ready to be started against dsn.
func NewConnectFlow(handle protocol.Handle, dsn string) *ConnectFlow {
	return &ConnectFlow{handle: handle, dsn: dsn, state: connectStateStart}
}

// Step advances the flow by one increment. On the first call it issues
// StartConnect; subsequent calls feed the observed ReadyEvent into
// PollConnect. It returns the Wait the caller's Waiter should satisfy next,
// whether the flow has finished, and any terminal error.
func (f *ConnectFlow) Step(ready protocol.ReadyEvent) (Wait, bool, error) {
	switch f.state {
	case connectStateDone:
		return done(), true, ErrorStepAfterDone.Error(nil)
	case connectStateFailed:
		return done(), true, ErrorStepAfterDone.Error(f.err)

	case connectStateStart:
		if err := f.handle.StartConnect(f.dsn); err != nil {
			f.state = connectStateFailed
			f.err = err
			return done(), true, err
		}
		f.state = connectStatePolling
		return Wait{Fd: f.handle.Fd(), Event: protocol.WaitWritable}, false, nil

	case connectStatePolling:
		status, wait, err := f.handle.PollConnect(ready)
		switch status {
		case protocol.ConnectPollFailed:
			f.state = connectStateFailed
			f.err = err
			return done(), true, err
		case protocol.ConnectPollOK:
			f.state = connectStateNonblocking
			return f.Step(protocol.ReadyNone)
		default:
			return Wait{Fd: f.handle.Fd(), Event: wait}, false, nil
		}

	case connectStateNonblocking:
		if err := f.handle.SetNonblocking(); err != nil {
			f.state = connectStateFailed
			f.err = err
			return done(), true, err
		}
		f.state = connectStateDone
		return done(), true, nil
	}

	return done(), true, ErrorUnexpectedState.Error(nil)
}

// Err returns the error the flow failed with, if any.
func (f *ConnectFlow) Err() error {
	return f.err
}
