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

// Package transaction implements the scope construct layered on top of a
// Connection's raw command execution: BEGIN/COMMIT/ROLLBACK at the outer
// level, SAVEPOINT/RELEASE/ROLLBACK TO at inner levels, force-rollback
// mode, and the Rollback control-flow signal. It depends on conn only
// through the narrow Host interface below, so conn can depend on
// transaction without an import cycle.
package transaction

import (
	"context"

	"github.com/sabouaram/pgdriver/protocol"
)

// Host is the capability a Connection façade must provide so a Scope can
// drive BEGIN/SAVEPOINT/COMMIT/ROLLBACK sequencing without depending on
// conn's concrete type.
type Host interface {
	// Lock acquires the connection's command lock for the duration of one
	// enter or exit sequence.
	Lock(ctx context.Context) error
	// Unlock releases the lock acquired by Lock.
	Unlock()

	// TxStatus reports the server's current transaction status.
	TxStatus() protocol.TxStatus

	// ExecuteCommand submits sql and waits for completion, raising on any
	// non-success result or protocol failure.
	ExecuteCommand(ctx context.Context, sql string) error

	// Autocommit returns the connection's current autocommit flag.
	Autocommit() bool
	// SetAutocommitRaw sets the autocommit flag without the ProgrammingError
	// gating Connection.SetAutocommit applies to caller-initiated changes;
	// only a Scope's own enter/exit bookkeeping may call this.
	SetAutocommitRaw(bool)

	// StackEmpty reports whether the savepoint stack is empty.
	StackEmpty() bool
	// NamedCount reports how many named (non-Outer) entries are on the
	// savepoint stack, used to synthesize tx_savepoint_<N>.
	NamedCount() int
	// PushOuter pushes the Outer sentinel onto the savepoint stack.
	PushOuter()
	// PushNamed pushes a named savepoint entry onto the stack.
	PushNamed(name string)
	// PopOuter pops the Outer sentinel.
	PopOuter()
	// PopNamed pops the named entry matching name.
	PopNamed(name string)

	// LogCleanupError logs an error encountered while running Exit's
	// cleanup commands, without affecting what Exit returns to the caller.
	LogCleanupError(err error)
}

// State is a Scope's position in its NEW -> ENTERED -> {COMMITTED,
// ROLLED_BACK} lifecycle.
type State uint8

const (
	StateNew State = iota
	StateEntered
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateEntered:
		return "entered"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "new"
	}
}
