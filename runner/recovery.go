/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package runner holds small lifecycle helpers shared by goroutine-driven
// components across the module.
package runner

import (
	"fmt"
	stdlog "log"
	"strings"

	"github.com/nabbar/golib/logger"
)

// RecoveryCaller logs a panic recovered by the caller's own recover() call.
// It is a no-op when recovered is nil (the normal, non-panicking path).
// extra entries are appended to the log line for additional context. log
// may be nil, in which case the panic still reaches stderr via the
// standard logger rather than being swallowed.
func RecoveryCaller(caller string, log logger.FuncLog, recovered interface{}, extra ...string) {
	if recovered == nil {
		return
	}

	msg := caller + ": recovered panic"
	if len(extra) > 0 {
		msg += " (" + strings.Join(extra, ", ") + ")"
	}

	if log != nil {
		if l := log(); l != nil {
			l.Error(msg, fmt.Errorf("%v", toString(recovered)))
			return
		}
	}

	stdlog.Print(msg + ": " + toString(recovered))
}

func toString(v interface{}) string {
	if e, ok := v.(error); ok {
		return e.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic value"
}
