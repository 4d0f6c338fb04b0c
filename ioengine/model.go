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

// Package ioengine renders spec's connect_flow/exec_flow as explicit
// Go state machines. Go has no first-class coroutines, so instead of a
// generator that yields WaitEvent and resumes on ReadyEvent, each flow is a
// struct exposing Step: callers loop Step until it reports completion,
// parking on the returned Wait in between via a waiter.Waiter.
package ioengine

import "github.com/sabouaram/pgdriver/protocol"

// Wait describes what a flow needs before its next Step can progress.
type Wait struct {
	Fd    int
	Event protocol.WaitEvent
}

// done returns a zero Wait paired with a finished flow.
func done() Wait {
	return Wait{Event: protocol.WaitNone}
}

// connectState enumerates connect_flow's states.
type connectState uint8

const (
	connectStateStart connectState = iota
	connectStatePolling
	connectStateNonblocking
	connectStateDone
	connectStateFailed
)

// execState enumerates exec_flow's states.
type execState uint8

const (
	execStateStart execState = iota
	execStateSending
	execStateFlushing
	execStateConsuming
	execStateDone
	execStateFailed
)
