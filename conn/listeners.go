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
	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/runner"
)

func (c *connection) RegisterNoticeListener(l NoticeListener) {
	if l == nil {
		return
	}
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	c.notices = append(c.notices, l)
}

func (c *connection) RegisterNotifyListener(l NotifyListener) {
	if l == nil {
		return
	}
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	c.notifies = append(c.notifies, l)
}

// dispatchNotices drains any notices the handle buffered since the last
// command and invokes every registered listener in registration order. A
// snapshot of the listener list is taken before iterating so a listener
// registering another listener mid-dispatch never races the dispatch
// loop itself; a panicking listener is recovered and logged, never
// allowed to affect the connection.
func (c *connection) dispatchNotices() {
	notices := c.handle.DrainNotices()
	if len(notices) == 0 {
		return
	}

	c.listenMu.Lock()
	listeners := append([]NoticeListener(nil), c.notices...)
	c.listenMu.Unlock()

	for _, n := range notices {
		for _, l := range listeners {
			c.safeCallNotice(l, n)
		}
	}
}

func (c *connection) safeCallNotice(l NoticeListener, n protocol.Notice) {
	defer func() {
		runner.RecoveryCaller("conn.NoticeListener", c.log, recover())
	}()
	l(n)
}

func (c *connection) safeCallNotify(l NotifyListener, n protocol.Notify) {
	defer func() {
		runner.RecoveryCaller("conn.NotifyListener", c.log, recover())
	}()
	l(n)
}

func (c *connection) dispatchNotifications() {
	notifies := c.handle.DrainNotifications()
	if len(notifies) == 0 {
		return
	}

	c.listenMu.Lock()
	listeners := append([]NotifyListener(nil), c.notifies...)
	c.listenMu.Unlock()

	for _, n := range notifies {
		for _, l := range listeners {
			c.safeCallNotify(l, n)
		}
	}
}
