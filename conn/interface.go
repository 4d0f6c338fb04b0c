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

// Package conn implements the Connection façade: the single type a caller
// actually holds. It owns the protocol.Handle, the command lock, the
// savepoint stack a transaction.Scope drives through the narrow
// transaction.Host contract, the client_encoding cache, and the
// notice/notify listener lists. SyncConnection wires a blocking Waiter and
// a native mutex for one-goroutine-per-connection use; AsyncConnection
// wires a cooperative Waiter and a cancellable lock for callers that
// multiplex several connections from a shared goroutine pool.
package conn

import (
	"context"

	"golang.org/x/text/encoding"

	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/transaction"
)

// NoticeListener receives asynchronous NOTICE/WARNING messages the server
// attaches to the connection outside of any query result.
type NoticeListener func(notice protocol.Notice)

// NotifyListener receives asynchronous NOTIFY payloads delivered to a
// LISTENing connection, drained after every executed command.
type NotifyListener func(notify protocol.Notify)

// Connection is the capability surface a caller drives: command
// execution, transaction scopes, autocommit and client_encoding, and
// notice/notify listener registration.
type Connection interface {
	// ExecuteCommand sends sql and waits for it to complete. A protocol
	// failure is returned as the handle reported it; a non-success result
	// returns the handle's LastError, or an UnknownError when the handle
	// reported none. The command's Result is retrievable afterwards via
	// LastResult.
	ExecuteCommand(ctx context.Context, sql string) error

	// LastResult returns the Result of the most recently completed
	// ExecuteCommand call.
	LastResult() *protocol.Result

	// Commit issues COMMIT if the connection is not IDLE; a no-op
	// otherwise. Forbidden while a Scope is active.
	Commit(ctx context.Context) error

	// Rollback issues ROLLBACK if the connection is not IDLE; a no-op
	// otherwise. Forbidden while a Scope is active.
	Rollback(ctx context.Context) error

	// Transaction opens a transaction.Scope: an outer BEGIN if the
	// connection is IDLE, or a nested SAVEPOINT otherwise. name may be
	// empty; forceRollback, if true, rolls back on a clean exit too.
	Transaction(ctx context.Context, name string, forceRollback bool) (*transaction.Scope, error)

	// Autocommit returns the current autocommit flag.
	Autocommit() bool
	// SetAutocommit changes the autocommit flag. Forbidden while a Scope
	// is active or a command is mid-transaction.
	SetAutocommit(v bool) error

	// ClientEncoding returns the connection's current client_encoding
	// name, consulting the server's reported parameter on first use and
	// whenever it changes.
	ClientEncoding(ctx context.Context) (string, error)
	// SetClientEncoding issues SET client_encoding TO <value> and
	// invalidates the cache.
	SetClientEncoding(ctx context.Context, name string) error
	// Encoding resolves the current client_encoding to a
	// golang.org/x/text Encoding, falling back to the identity
	// (ASCII-safe) encoding for SQL_ASCII or any name this driver
	// cannot map.
	Encoding(ctx context.Context) (encoding.Encoding, error)

	// RegisterNoticeListener appends a NoticeListener, invoked in
	// registration order for every NOTICE the server attaches.
	RegisterNoticeListener(l NoticeListener)
	// RegisterNotifyListener appends a NotifyListener, invoked in
	// registration order for every NOTIFY drained after a command.
	RegisterNotifyListener(l NotifyListener)

	// StatusHealth round-trips a trivial command to confirm the
	// connection is live, when IDLE.
	StatusHealth(ctx context.Context) error
	// StatusInfo reports the connection's current observable state.
	StatusInfo() Info

	// Close releases the underlying handle. Idempotent.
	Close() error
}

// Info is a snapshot of a Connection's observable state, used by
// StatusInfo and by callers building their own health/status surface.
type Info struct {
	TxStatus       protocol.TxStatus
	Autocommit     bool
	ClientEncoding string
	Closed         bool
	SavepointDepth int
}
