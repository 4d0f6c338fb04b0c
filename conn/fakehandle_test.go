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

package conn

import (
	"context"
	"sync"

	"github.com/sabouaram/pgdriver/protocol"
)

// fakeHandle is a minimal protocol.Handle double: connect and exec both
// complete synchronously (PollConnect reports OK immediately, GetResult
// returns a result on its first call), so driving it never actually
// parks on fakeWaiter beyond the one WaitWritable round connect_flow
// always requests.
type fakeHandle struct {
	mu sync.Mutex

	connectErr error

	commands []string
	failOn   map[string]error
	status   map[string]protocol.ResultStatus
	pending  *protocol.Result

	txStatus protocol.TxStatus
	params   map[string]string
	lastErr  error

	notices   []protocol.Notice
	notifies  []protocol.Notify
	closed    bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		failOn: map[string]error{},
		status: map[string]protocol.ResultStatus{},
		params: map[string]string{},
	}
}

func (h *fakeHandle) StartConnect(dsn string) error { return h.connectErr }

func (h *fakeHandle) PollConnect(ready protocol.ReadyEvent) (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	return protocol.ConnectPollOK, protocol.WaitNone, nil
}

func (h *fakeHandle) SetNonblocking() error { return nil }

func (h *fakeHandle) SendQuery(sql string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = append(h.commands, sql)

	if err, ok := h.failOn[sql]; ok {
		return err
	}

	st := protocol.ResultCommandOK
	if s, ok := h.status[sql]; ok {
		st = s
	}

	switch sql {
	case "BEGIN":
		h.txStatus = protocol.TxInTrans
	case "COMMIT", "ROLLBACK":
		h.txStatus = protocol.TxIdle
	}

	h.pending = &protocol.Result{Status: st, Command: sql}
	return nil
}

func (h *fakeHandle) Flush() (protocol.WaitEvent, error) { return protocol.WaitNone, nil }

func (h *fakeHandle) ConsumeInput() (protocol.WaitEvent, error) { return protocol.WaitNone, nil }

func (h *fakeHandle) IsBusy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending == nil
}

func (h *fakeHandle) GetResult() (*protocol.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.pending
	h.pending = nil
	return r, nil
}

func (h *fakeHandle) TxStatus() protocol.TxStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txStatus
}

func (h *fakeHandle) ParameterStatus(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.params[name]
	return v, ok
}

func (h *fakeHandle) Escape(s string) string { return "'" + s + "'" }

func (h *fakeHandle) Fd() int { return 1 }

func (h *fakeHandle) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *fakeHandle) DrainNotices() []protocol.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.notices
	h.notices = nil
	return n
}

func (h *fakeHandle) DrainNotifications() []protocol.Notify {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.notifies
	h.notifies = nil
	return n
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// fakeWaiter satisfies waiter.Waiter without any real poll(2) call: every
// requested event is immediately reported ready. connect_flow's single
// WaitWritable request is the only thing that ever reaches it in these
// tests, since fakeHandle never asks ExecFlow to park.
type fakeWaiter struct{}

func (fakeWaiter) Wait(ctx context.Context, fd int, event protocol.WaitEvent) (protocol.ReadyEvent, error) {
	return protocol.ReadyRead | protocol.ReadyWrite, nil
}
