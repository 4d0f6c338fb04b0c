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

// Package waiter supplies the two Waiter strategies an ioengine flow is
// driven by: a blocking Waiter that parks the calling goroutine on a real
// socket poll, and a cooperative Waiter that polls with a zero timeout on a
// ticker and returns as soon as its context is cancelled.
package waiter

import (
	"context"

	"github.com/sabouaram/pgdriver/protocol"
)

// Waiter blocks (or cooperatively yields) until fd satisfies event, then
// reports what became ready. Implementations must honor ctx cancellation.
type Waiter interface {
	Wait(ctx context.Context, fd int, event protocol.WaitEvent) (protocol.ReadyEvent, error)
}
