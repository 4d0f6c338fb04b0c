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

	"github.com/sabouaram/pgdriver/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("notice and notify dispatch", func() {
	var handle *fakeHandle

	BeforeEach(func() {
		handle = newFakeHandle()
	})

	It("delivers notices queued by the handle to every registered listener", func() {
		c := newTestConnection(handle)

		var gotA, gotB []protocol.Notice
		c.RegisterNoticeListener(func(n protocol.Notice) { gotA = append(gotA, n) })
		c.RegisterNoticeListener(func(n protocol.Notice) { gotB = append(gotB, n) })

		handle.notices = []protocol.Notice{{Severity: "NOTICE", Message: "hello"}}
		Expect(c.ExecuteCommand(context.Background(), "SELECT 1")).To(Succeed())

		Expect(gotA).To(HaveLen(1))
		Expect(gotB).To(HaveLen(1))
		Expect(gotA[0].Message).To(Equal("hello"))

		Expect(handle.DrainNotices()).To(BeEmpty())
	})

	It("delivers notify payloads queued by the handle", func() {
		c := newTestConnection(handle)

		var got []protocol.Notify
		c.RegisterNotifyListener(func(n protocol.Notify) { got = append(got, n) })

		handle.notifies = []protocol.Notify{{Channel: "chan", Payload: "payload", PID: 42}}
		Expect(c.ExecuteCommand(context.Background(), "SELECT 1")).To(Succeed())

		Expect(got).To(HaveLen(1))
		Expect(got[0].Channel).To(Equal("chan"))
		Expect(got[0].PID).To(Equal(uint32(42)))
	})

	It("ignores a nil listener registration", func() {
		c := newTestConnection(handle)
		c.RegisterNoticeListener(nil)
		c.RegisterNotifyListener(nil)

		handle.notices = []protocol.Notice{{Severity: "NOTICE", Message: "hi"}}
		Expect(c.ExecuteCommand(context.Background(), "SELECT 1")).To(Succeed())
	})

	It("recovers a panicking listener without failing the command", func() {
		c := newTestConnection(handle)

		c.RegisterNoticeListener(func(n protocol.Notice) { panic("listener exploded") })

		var calledAfter bool
		c.RegisterNoticeListener(func(n protocol.Notice) { calledAfter = true })

		handle.notices = []protocol.Notice{{Severity: "NOTICE", Message: "hi"}}
		Expect(c.ExecuteCommand(context.Background(), "SELECT 1")).To(Succeed())
		Expect(calledAfter).To(BeTrue())
	})
})
