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

	"github.com/sabouaram/pgdriver/ioengine"
	"github.com/sabouaram/pgdriver/pgmutex"
	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/waiter"
)

// NewSyncConnection runs connect_flow against handle using a blocking
// Waiter and a native sync.Mutex lock: the right choice for a driver used
// synchronously, one connection per goroutine. log may be nil.
func NewSyncConnection(ctx context.Context, cfg Config, handle protocol.Handle, log logger.FuncLog) (Connection, error) {
	return newConnection(ctx, cfg, handle, waiter.NewBlocking(), pgmutex.NewNative(), log)
}

func newConnection(ctx context.Context, cfg Config, handle protocol.Handle, w waiter.Waiter, l pgmutex.Locker, log logger.FuncLog) (Connection, error) {
	c := &connection{
		handle:     handle,
		lock:       l,
		wait:       w,
		log:        log,
		autocommit: cfg.Autocommit,
	}

	flow := ioengine.NewConnectFlow(handle, cfg.Final())
	if err := c.drive(ctx, flow); err != nil {
		return nil, err
	}

	return c, nil
}
