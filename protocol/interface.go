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

// Package protocol defines the boundary between the driver core and a
// concrete PostgreSQL wire-protocol binding. Handle is the only contract
// the core (ioengine, transaction, conn) depends on; it never assembles
// wire bytes itself. See the pgwire package for the concrete adapter over
// jackc/pgx/v5's pgconn and pgproto3.
package protocol

// WaitEvent describes what readiness a Handle needs before it can make
// forward progress.
type WaitEvent uint8

const (
	// WaitNone means the handle is not waiting on anything; the caller
	// can call the next step immediately.
	WaitNone WaitEvent = iota
	// WaitReadable means the underlying descriptor must become readable.
	WaitReadable
	// WaitWritable means the underlying descriptor must become writable.
	WaitWritable
)

func (w WaitEvent) String() string {
	switch w {
	case WaitReadable:
		return "readable"
	case WaitWritable:
		return "writable"
	default:
		return "none"
	}
}

// ReadyEvent reports which readiness condition(s) a Waiter observed.
type ReadyEvent uint8

const (
	ReadyNone ReadyEvent = 0
	ReadyRead ReadyEvent = 1 << iota
	ReadyWrite
)

// Readable reports whether the read bit is set.
func (r ReadyEvent) Readable() bool { return r&ReadyRead != 0 }

// Writable reports whether the write bit is set.
func (r ReadyEvent) Writable() bool { return r&ReadyWrite != 0 }

// ConnectPollStatus is the result of one PollConnect step.
type ConnectPollStatus uint8

const (
	ConnectPollOK ConnectPollStatus = iota
	ConnectPollNeedsRead
	ConnectPollNeedsWrite
	ConnectPollFailed
)

// TxStatus mirrors the single-byte transaction status PostgreSQL reports
// in every ReadyForQuery message.
type TxStatus uint8

const (
	TxIdle TxStatus = iota
	TxInTrans
	TxInError
	TxUnknown
)

// ResultStatus classifies the outcome of one executed command.
type ResultStatus uint8

const (
	ResultEmptyQuery ResultStatus = iota
	ResultCommandOK
	ResultTuplesOK
	ResultCopyIn
	ResultCopyOut
	ResultCopyBoth
	ResultBadResponse
	ResultFatalError
)

// Row is one decoded result row; column values are left in their raw wire
// encoding (text or binary), exactly as pgproto3.DataRow delivers them.
// Interpreting column bytes is a concern of the caller, not of Handle.
type Row struct {
	Columns [][]byte
}

// Result is the outcome of one executed SQL command.
type Result struct {
	Status  ResultStatus
	Command string
	Rows    []Row
	Fields  []string
}

// Notice is an asynchronous NOTICE/WARNING the server attached to the
// connection outside of any query's result, e.g. from a PL/pgSQL RAISE.
type Notice struct {
	Severity string
	Message  string
}

// Notify is an asynchronous NOTIFY delivered to a LISTENing connection.
type Notify struct {
	Channel string
	Payload string
	PID     uint32
}

// Handle is the non-blocking binding over a single PostgreSQL wire
// connection. Every method must never block on socket I/O; instead it
// reports WaitEvent/ConnectPollStatus/ResultStatus so the caller's Waiter
// can drive a poll loop. This is the ProtocolHandle contract the core
// treats as an external collaborator.
type Handle interface {
	// StartConnect begins the TCP dial and PostgreSQL startup handshake.
	// It returns immediately; PollConnect drives it to completion.
	StartConnect(dsn string) error

	// PollConnect advances the startup/auth state machine by one step.
	PollConnect(ready ReadyEvent) (ConnectPollStatus, WaitEvent, error)

	// SetNonblocking puts (or keeps) the underlying descriptor in
	// non-blocking mode; called once connect completes.
	SetNonblocking() error

	// SendQuery queues a simple-query message for the given SQL text.
	SendQuery(sql string) error

	// Flush attempts to write any buffered outbound bytes. It reports
	// WaitWritable if more space is needed.
	Flush() (WaitEvent, error)

	// ConsumeInput reads and parses any available inbound bytes without
	// blocking. It reports WaitReadable when no inbound bytes are available
	// yet; after consuming input it reports WaitNone, whether or not a
	// result is ready.
	ConsumeInput() (WaitEvent, error)

	// IsBusy reports whether a query is in flight and no Result is ready.
	IsBusy() bool

	// GetResult returns the next completed Result, or nil if none is
	// buffered yet (call ConsumeInput first).
	GetResult() (*Result, error)

	// TxStatus reports the most recently observed transaction status.
	TxStatus() TxStatus

	// ParameterStatus returns the last reported value of a startup/runtime
	// parameter (e.g. "client_encoding", "server_encoding").
	ParameterStatus(name string) (string, bool)

	// Escape quotes/escapes a literal for inclusion in a SQL command. The
	// core itself does not call it: savepoint names are sent as given.
	Escape(s string) string

	// Fd returns the underlying descriptor, for poll-based Waiters.
	Fd() int

	// LastError returns the most recent server-reported error, if any.
	LastError() error

	// DrainNotices returns and clears any NOTICE/WARNING messages the
	// server attached to the connection since the last drain.
	DrainNotices() []Notice

	// DrainNotifications returns and clears any NOTIFY payloads delivered
	// to this connection since the last drain.
	DrainNotifications() []Notify

	// Close releases the underlying connection.
	Close() error
}
