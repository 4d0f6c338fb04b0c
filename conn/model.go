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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nabbar/golib/errors"
	"github.com/nabbar/golib/logger"

	"github.com/sabouaram/pgdriver/ioengine"
	"github.com/sabouaram/pgdriver/pgmutex"
	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/transaction"
	"github.com/sabouaram/pgdriver/waiter"
)

// stackEntry is one frame of the savepoint stack: either the Outer
// sentinel (the BEGIN frame) or a named SAVEPOINT.
type stackEntry struct {
	outer bool
	name  string
}

// connection is the concrete Connection. Exported constructors
// (NewSyncConnection, NewAsyncConnection) choose its Waiter/Locker pair;
// everything else is shared.
type connection struct {
	handle protocol.Handle
	lock   pgmutex.Locker
	wait   waiter.Waiter
	log    logger.FuncLog

	mu         sync.Mutex
	savepoints []stackEntry
	autocommit bool

	encMu    sync.RWMutex
	encName  string
	encTable Table

	listenMu sync.Mutex
	notices  []NoticeListener
	notifies []NotifyListener

	lastResult atomic.Value // protocol.Result

	closed atomic.Bool
}

// flow is the shape ioengine.ConnectFlow and ioengine.ExecFlow both
// satisfy: step once, report what to wait for next, and whether done.
type flow interface {
	Step(ready protocol.ReadyEvent) (ioengine.Wait, bool, error)
}

// drive loops f.Step, parking on c.wait between steps, until f reports
// completion.
func (c *connection) drive(ctx context.Context, f flow) error {
	var ready protocol.ReadyEvent

	for {
		w, done, err := f.Step(ready)
		if done {
			return err
		}
		if w.Event == protocol.WaitNone {
			ready = protocol.ReadyNone
			continue
		}

		r, werr := c.wait.Wait(ctx, w.Fd, w.Event)
		if werr != nil {
			return werr
		}
		ready = r
	}
}

// executeLocked runs one exec_flow round trip. The caller must already
// hold c.lock (via c.lock.Lock or, for transaction.Host calls, via the
// lock transaction.Scope itself took out for the whole enter/exit
// sequence).
func (c *connection) executeLocked(ctx context.Context, sql string) error {
	if c.closed.Load() {
		return ErrorClosed.Error(nil)
	}

	f := ioengine.NewExecFlow(c.handle, sql)
	if err := c.drive(ctx, f); err != nil {
		return err
	}

	res := f.Result()
	if res == nil {
		return errors.UnknownError.Error(fmt.Errorf("exec_flow completed without a result"))
	}
	c.lastResult.Store(*res)
	c.dispatchNotices()
	c.dispatchNotifications()

	switch res.Status {
	case protocol.ResultCommandOK, protocol.ResultTuplesOK, protocol.ResultEmptyQuery,
		protocol.ResultCopyIn, protocol.ResultCopyOut, protocol.ResultCopyBoth:
		return nil
	default:
		if le := c.handle.LastError(); le != nil {
			return le
		}
		return errors.UnknownError.Error(fmt.Errorf("command failed with result status %d", res.Status))
	}
}

func (c *connection) ExecuteCommand(ctx context.Context, sql string) error {
	if err := c.lock.Lock(ctx); err != nil {
		return err
	}
	defer c.lock.Unlock()

	return c.executeLocked(ctx, sql)
}

func (c *connection) LastResult() *protocol.Result {
	if v := c.lastResult.Load(); v != nil {
		r := v.(protocol.Result)
		return &r
	}
	return nil
}

func (c *connection) txStatus() protocol.TxStatus {
	return c.handle.TxStatus()
}

func (c *connection) stackEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.savepoints) == 0
}

func (c *connection) savepointDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.savepoints)
}

// host adapts connection to transaction.Host. Lock/Unlock delegate to the
// same pgmutex.Locker a direct ExecuteCommand call would use, so a Scope
// holds the real connection-wide lock for its whole enter/exit sequence;
// ExecuteCommand here calls executeLocked directly (no re-locking) since
// the Scope already holds it.
type host struct {
	c *connection
}

func (h host) Lock(ctx context.Context) error { return h.c.lock.Lock(ctx) }
func (h host) Unlock()                        { h.c.lock.Unlock() }
func (h host) TxStatus() protocol.TxStatus     { return h.c.txStatus() }

func (h host) ExecuteCommand(ctx context.Context, sql string) error {
	return h.c.executeLocked(ctx, sql)
}

func (h host) Autocommit() bool {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.autocommit
}

func (h host) SetAutocommitRaw(v bool) {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	h.c.autocommit = v
}

func (h host) StackEmpty() bool { return h.c.stackEmpty() }

func (h host) NamedCount() int {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()

	n := 0
	for _, e := range h.c.savepoints {
		if !e.outer {
			n++
		}
	}
	return n
}

func (h host) PushOuter() {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	h.c.savepoints = append(h.c.savepoints, stackEntry{outer: true})
}

func (h host) PushNamed(name string) {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	h.c.savepoints = append(h.c.savepoints, stackEntry{name: name})
}

func (h host) PopOuter() { h.c.pop() }

func (h host) PopNamed(name string) { h.c.pop() }

func (c *connection) pop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.savepoints) > 0 {
		c.savepoints = c.savepoints[:len(c.savepoints)-1]
	}
}

func (h host) LogCleanupError(err error) {
	if h.c.log != nil {
		if l := h.c.log(); l != nil {
			l.Error("transaction scope cleanup failed", err)
		}
	}
}

func (c *connection) Commit(ctx context.Context) error {
	if !c.stackEmpty() {
		return ErrorCommitInTransaction.Error(nil)
	}
	if c.txStatus() == protocol.TxIdle {
		return nil
	}
	return c.ExecuteCommand(ctx, "COMMIT")
}

func (c *connection) Rollback(ctx context.Context) error {
	if !c.stackEmpty() {
		return ErrorRollbackInTransaction.Error(nil)
	}
	if c.txStatus() == protocol.TxIdle {
		return nil
	}
	return c.ExecuteCommand(ctx, "ROLLBACK")
}

func (c *connection) Transaction(ctx context.Context, name string, forceRollback bool) (*transaction.Scope, error) {
	sc := transaction.New(host{c: c}, ctx, name, forceRollback)
	return sc.Enter()
}

func (c *connection) Autocommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autocommit
}

func (c *connection) SetAutocommit(v bool) error {
	if c.txStatus() != protocol.TxIdle || !c.stackEmpty() {
		return ErrorAutocommitInTransaction.Error(nil)
	}

	c.mu.Lock()
	c.autocommit = v
	c.mu.Unlock()
	return nil
}

func (c *connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.handle.Close()
}
