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

package transaction

import (
	"context"
	"fmt"

	"github.com/sabouaram/pgdriver/protocol"
)

// Scope is the scope object returned by a Connection's transaction entry
// point. It is created fresh per transaction attempt and must not outlive
// the Connection it was built against; the back-reference to Host is a
// plain interface value, never itself a source of a reference cycle back
// into the scope.
type Scope struct {
	host Host
	ctx  context.Context

	requestedName string
	forceRollback bool

	isOuter       bool
	pushedNamed   bool
	savepointName string

	originalAutocommit bool

	state State
}

// New builds a Scope ready to be entered. savepointName may be empty, in
// which case one is synthesized on Enter if this turns out to be an inner
// frame (outer frames stay unnamed unless the caller explicitly asked for
// a named savepoint in addition to BEGIN).
func New(host Host, ctx context.Context, savepointName string, forceRollback bool) *Scope {
	return &Scope{
		host:          host,
		ctx:           ctx,
		requestedName: savepointName,
		forceRollback: forceRollback,
		state:         StateNew,
	}
}

// Connection exposes the owning Host, matching spec's "connection"
// accessor on the scope object.
func (s *Scope) Connection() Host {
	return s.host
}

// SavepointName returns the savepoint identifier this scope pushed, or
// empty for an outer frame that did not also request a named savepoint.
func (s *Scope) SavepointName() string {
	return s.savepointName
}

// State returns the scope's current lifecycle state.
func (s *Scope) State() State {
	return s.state
}

// IsOuter reports whether this scope emitted BEGIN on entry.
func (s *Scope) IsOuter() bool {
	return s.isOuter
}

// Rollback returns a Rollback signal targeting this scope: raising it
// (returning it as the error from the function running inside the scope)
// requests an early rollback that is swallowed when it reaches this
// scope's Exit.
func (s *Scope) Rollback() *Rollback {
	return &Rollback{target: s}
}

// Enter activates the scope: it decides whether this is an outer or inner
// frame based on the server's current transaction status, emits
// BEGIN/SAVEPOINT accordingly, and returns the scope itself so callers can
// identify it (e.g. to build a matching Rollback signal).
func (s *Scope) Enter() (*Scope, error) {
	if s.state != StateNew {
		return nil, ErrorScopeReused.Error(nil)
	}

	if err := s.host.Lock(s.ctx); err != nil {
		return nil, err
	}
	defer s.host.Unlock()

	if s.host.TxStatus() == protocol.TxIdle {
		if err := s.enterOuter(); err != nil {
			return nil, err
		}
	} else {
		if err := s.enterInner(); err != nil {
			return nil, err
		}
	}

	s.state = StateEntered
	return s, nil
}

func (s *Scope) enterOuter() error {
	if !s.host.StackEmpty() {
		return ErrorStackNotEmpty.Error(nil)
	}

	s.isOuter = true
	s.host.PushOuter()
	s.originalAutocommit = s.host.Autocommit()
	s.host.SetAutocommitRaw(false)

	if err := s.host.ExecuteCommand(s.ctx, "BEGIN"); err != nil {
		return err
	}

	if s.requestedName != "" {
		s.savepointName = s.requestedName
		s.host.PushNamed(s.savepointName)
		s.pushedNamed = true
		return s.host.ExecuteCommand(s.ctx, "SAVEPOINT "+s.savepointName)
	}

	return nil
}

func (s *Scope) enterInner() error {
	name := s.requestedName
	if name == "" {
		name = fmt.Sprintf("tx_savepoint_%d", s.host.NamedCount()+1)
	}

	s.savepointName = name
	s.host.PushNamed(name)
	s.pushedNamed = true

	return s.host.ExecuteCommand(s.ctx, "SAVEPOINT "+name)
}

// Exit finalizes the scope given the error (if any) the guarded work
// returned. Cleanup commands always run, in reverse of the order the stack
// was built (savepoint first, then the outer transaction) so the
// server-side nesting is undone exactly. A Rollback signal whose
// target is this scope (or unspecified) is swallowed; any other error,
// including a Rollback targeting an enclosing scope, is returned for the
// caller to propagate further out.
func (s *Scope) Exit(exc error) error {
	if s.state != StateEntered {
		return ErrorExitWithoutEnter.Error(nil)
	}

	if err := s.host.Lock(s.ctx); err != nil {
		return err
	}
	defer s.host.Unlock()

	failure := exc != nil || s.forceRollback
	var cleanupErr error

	if s.pushedNamed {
		s.host.PopNamed(s.savepointName)
		sql := "RELEASE SAVEPOINT " + s.savepointName
		if failure {
			sql = "ROLLBACK TO SAVEPOINT " + s.savepointName
		}
		if err := s.host.ExecuteCommand(s.ctx, sql); err != nil {
			s.host.LogCleanupError(err)
			cleanupErr = err
		}
	}

	if s.isOuter {
		s.host.PopOuter()
		sql := "COMMIT"
		if failure {
			sql = "ROLLBACK"
		}
		if err := s.host.ExecuteCommand(s.ctx, sql); err != nil {
			s.host.LogCleanupError(err)
			if cleanupErr == nil {
				cleanupErr = err
			}
		}
		s.host.SetAutocommitRaw(s.originalAutocommit)
	}

	if failure {
		s.state = StateRolledBack
	} else {
		s.state = StateCommitted
	}

	if exc != nil {
		if rb, ok := exc.(*Rollback); ok && (rb.target == nil || rb.target == s) {
			return nil
		}
		return exc
	}

	return cleanupErr
}
