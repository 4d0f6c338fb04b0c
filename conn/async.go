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

	"github.com/nabbar/golib/logger"

	"github.com/sabouaram/pgdriver/pgmutex"
	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/waiter"
)

// NewAsyncConnection runs connect_flow against handle using a cooperative
// Waiter and a cancellable lock: for callers multiplexing several
// connections from a shared goroutine pool rather than dedicating one
// goroutine per connection. log may be nil.
func NewAsyncConnection(ctx context.Context, cfg Config, handle protocol.Handle, log logger.FuncLog) (Connection, error) {
	return newConnection(ctx, cfg, handle, waiter.NewCooperative(), pgmutex.NewCooperative(), log)
}
