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

import "fmt"

// Rollback is the control-flow signal a caller returns from the function
// running inside a scope to force an early rollback. It deliberately does
// not implement errors.Error: it is not a diagnostic, it is a request, and
// must not be logged or wrapped like a real failure.
type Rollback struct {
	target *Scope
}

// NewRollback builds a Rollback signal. A nil target rolls back the
// innermost active scope; a non-nil target rolls back every scope from the
// innermost up to and including target.
func NewRollback(target *Scope) *Rollback {
	return &Rollback{target: target}
}

// Target returns the scope this signal is aimed at, or nil if unspecified.
func (r *Rollback) Target() *Scope {
	return r.target
}

// Error implements the error interface so Rollback can travel through
// normal Go error-return paths; it is not registered in the errors
// package's code taxonomy.
func (r *Rollback) Error() string {
	if r.target == nil {
		return "transaction rollback requested"
	}
	return fmt.Sprintf("transaction rollback requested for scope %q", r.target.savepointName)
}
