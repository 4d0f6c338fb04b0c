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

package pgmutex

import (
	"context"
	"sync"
)

// Native is a Locker backed directly by sync.Mutex. ctx is only consulted
// before attempting to lock; once Lock is blocked in sync.Mutex.Lock it
// cannot be interrupted, matching the semantics of a single goroutine
// owning one connection synchronously.
type Native struct {
	m sync.Mutex
}

// NewNative returns a Locker appropriate for synchronous, single-goroutine
// connection use.
func NewNative() *Native {
	return &Native{}
}

func (n *Native) Lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.m.Lock()
	return nil
}

func (n *Native) Unlock() {
	n.m.Unlock()
}

func (n *Native) TryLock() bool {
	return n.m.TryLock()
}
