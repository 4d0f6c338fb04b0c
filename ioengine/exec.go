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

// ExecFlow drives one SendQuery/Flush/ConsumeInput/GetResult round trip to
// completion. It is the Go rendering of spec's exec_flow generator.
type ExecFlow struct {
	handle protocol.Handle
	sql    string
	state  execState
	result *protocol.Result
	err    error
}

// NewExecFlow returns a flow ready to execute sql against handle.
func NewExecFlow(handle protocol.Handle, sql string) *ExecFlow {
	return &ExecFlow{handle: handle, sql: sql, state: execStateStart}
}

// Step advances the flow by one increment, mirroring ConnectFlow.Step.
func (f *ExecFlow) Step(ready protocol.ReadyEvent) (Wait, bool, error) {
	switch f.state {
	case execStateDone:
		return done(), true, ErrorStepAfterDone.Error(nil)
	case execStateFailed:
		return done(), true, ErrorStepAfterDone.Error(f.err)

	case execStateStart:
		if err := f.handle.SendQuery(f.sql); err != nil {
			f.state = execStateFailed
			f.err = err
			return done(), true, err
		}
		f.state = execStateFlushing
		return f.Step(protocol.ReadyNone)

	case execStateFlushing:
		wait, err := f.handle.Flush()
		if err != nil {
			f.state = execStateFailed
			f.err = err
			return done(), true, err
		}
		if wait == protocol.WaitWritable {
			return Wait{Fd: f.handle.Fd(), Event: protocol.WaitWritable}, false, nil
		}
		f.state = execStateConsuming
		return f.Step(protocol.ReadyNone)

	case execStateConsuming:
		if res, err := f.handle.GetResult(); err != nil {
			f.state = execStateFailed
			f.err = err
			return done(), true, err
		} else if res != nil {
			f.result = res
			f.state = execStateDone
			return done(), true, nil
		}

		wait, err := f.handle.ConsumeInput()
		if err != nil {
			f.state = execStateFailed
			f.err = err
			return done(), true, err
		}
		if wait == protocol.WaitReadable {
			return Wait{Fd: f.handle.Fd(), Event: protocol.WaitReadable}, false, nil
		}
		return f.Step(protocol.ReadyNone)
	}

	return done(), true, ErrorUnexpectedState.Error(nil)
}

// Result returns the completed result, valid only once Step has reported
// completion without error.
func (f *ExecFlow) Result() *protocol.Result {
	return f.result
}

// Err returns the error the flow failed with, if any.
func (f *ExecFlow) Err() error {
	return f.err
}
