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

	"golang.org/x/sync/semaphore"
)

// Cooperative is a Locker backed by a weighted semaphore of weight one,
// used as a cancellable binary lock. Unlike Native, a blocked Lock call
// returns as soon as ctx is done instead of waiting forever.
type Cooperative struct {
	sem *semaphore.Weighted
}

// NewCooperative returns a cancellable Locker.
func NewCooperative() *Cooperative {
	return &Cooperative{sem: semaphore.NewWeighted(1)}
}

func (c *Cooperative) Lock(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

func (c *Cooperative) Unlock() {
	c.sem.Release(1)
}

func (c *Cooperative) TryLock() bool {
	return c.sem.TryAcquire(1)
}
