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

import "github.com/nabbar/golib/errors"

const (
	// ErrorAutocommitInTransaction is raised when autocommit is set while a
	// TransactionScope is active.
	ErrorAutocommitInTransaction errors.CodeError = iota + errors.MinAvailable + 0
	// ErrorCommitInTransaction is raised by an explicit Commit() call made
	// while a TransactionScope is active.
	ErrorCommitInTransaction
	// ErrorRollbackInTransaction is raised by an explicit Rollback() call
	// made while a TransactionScope is active.
	ErrorRollbackInTransaction
	// ErrorClosed is raised by any operation attempted after Close().
	ErrorClosed
	// ErrorUnsupportedEncoding carries the message for a client_encoding
	// this driver cannot represent. Encoding does not return it: an unknown
	// name falls back to encoding.Nop.
	ErrorUnsupportedEncoding
	// ErrorListenerNotRegistered carries the message for removing a
	// listener that is not registered. Connection has no listener-removal
	// method, so no call in this package returns it.
	ErrorListenerNotRegistered
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorAutocommitInTransaction)
	errors.RegisterIdFctMessage(ErrorAutocommitInTransaction, getMessage)
}

// getMessage returns the exact literal strings spec.md §6 requires for the
// three ProgrammingError conditions, plus messages for the remaining
// conn-level error codes.
func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorAutocommitInTransaction:
		return "can't change autocommit state when in Transaction context"
	case ErrorCommitInTransaction:
		return "Explicit commit() forbidden within a Transaction context. " +
			"(Transaction will be automatically committed on successful exit from context.)"
	case ErrorRollbackInTransaction:
		return "Explicit rollback() forbidden within a Transaction context. " +
			"(Either raise Transaction.Rollback() or allow an exception to propagate out of the context.)"
	case ErrorClosed:
		return "connection is closed"
	case ErrorUnsupportedEncoding:
		return "server client_encoding cannot be represented"
	case ErrorListenerNotRegistered:
		return "listener was not registered"
	}

	return ""
}
