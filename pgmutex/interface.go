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

// Package pgmutex provides the lock capability a Connection façade owns
// to serialize access to its single underlying protocol.Handle. Two
// implementations are offered: Native, a plain sync.Mutex, for the
// synchronous one-goroutine-per-connection usage; and Cooperative, a
// cancellable lock backed by golang.org/x/sync's weighted semaphore, for
// callers that need a lock acquisition to respect context cancellation.
package pgmutex

import "context"

// Locker is the capability the Connection façade depends on.
type Locker interface {
	// Lock acquires the lock, blocking until it succeeds. Cooperative also
	// returns once ctx is done; Native checks ctx only before it blocks.
	Lock(ctx context.Context) error
	// Unlock releases the lock. Unlocking a lock not held panics, matching
	// sync.Mutex's own contract.
	Unlock()
	// TryLock attempts to acquire the lock without blocking.
	TryLock() bool
}
