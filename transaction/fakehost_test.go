/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package transaction_test

import (
	"context"
	"sync"

	"github.com/sabouaram/pgdriver/protocol"
)

type stackEntry struct {
	outer bool
	name  string
}

// fakeHost is a minimal transaction.Host double that tracks emitted SQL
// and derives transaction status from the stack, exactly like a real
// Connection would, without needing a live server.
type fakeHost struct {
	mu         sync.Mutex
	stack      []stackEntry
	autocommit bool
	commands   []string
	failOn     map[string]bool
	cleanupLog []error
}

func newFakeHost() *fakeHost {
	return &fakeHost{failOn: map[string]bool{}}
}

func (h *fakeHost) Lock(ctx context.Context) error { h.mu.Lock(); return nil }
func (h *fakeHost) Unlock()                        { h.mu.Unlock() }

func (h *fakeHost) TxStatus() protocol.TxStatus {
	if len(h.stack) == 0 {
		return protocol.TxIdle
	}
	return protocol.TxInTrans
}

func (h *fakeHost) ExecuteCommand(ctx context.Context, sql string) error {
	h.commands = append(h.commands, sql)
	if h.failOn[sql] {
		return errTestCommandFailed
	}
	return nil
}

func (h *fakeHost) Autocommit() bool        { return h.autocommit }
func (h *fakeHost) SetAutocommitRaw(v bool) { h.autocommit = v }

func (h *fakeHost) StackEmpty() bool { return len(h.stack) == 0 }

func (h *fakeHost) NamedCount() int {
	n := 0
	for _, e := range h.stack {
		if !e.outer {
			n++
		}
	}
	return n
}

func (h *fakeHost) PushOuter()          { h.stack = append(h.stack, stackEntry{outer: true}) }
func (h *fakeHost) PushNamed(name string) {
	h.stack = append(h.stack, stackEntry{name: name})
}

func (h *fakeHost) PopOuter() {
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

func (h *fakeHost) PopNamed(name string) {
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

func (h *fakeHost) LogCleanupError(err error) {
	h.cleanupLog = append(h.cleanupLog, err)
}

type testError string

func (e testError) Error() string { return string(e) }

const errTestCommandFailed = testError("simulated command failure")
