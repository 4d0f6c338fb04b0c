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
	"errors"
	"fmt"

	libErrors "github.com/nabbar/golib/errors"

	"github.com/sabouaram/pgdriver/pgmutex"
	"github.com/sabouaram/pgdriver/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestConnection(h *fakeHandle) *connection {
	c, err := newConnection(context.Background(), Config{DSN: "dbname=test"}, h, fakeWaiter{}, pgmutex.NewNative(), nil)
	Expect(err).ToNot(HaveOccurred())
	return c.(*connection)
}

var _ = Describe("connection", func() {
	var handle *fakeHandle

	BeforeEach(func() {
		handle = newFakeHandle()
	})

	Describe("ExecuteCommand", func() {
		It("runs a command and records its result", func() {
			c := newTestConnection(handle)

			Expect(c.ExecuteCommand(context.Background(), "SELECT 1")).To(Succeed())
			Expect(handle.commands).To(Equal([]string{"SELECT 1"}))

			res := c.LastResult()
			Expect(res).ToNot(BeNil())
			Expect(res.Status).To(Equal(protocol.ResultCommandOK))
			Expect(res.Command).To(Equal("SELECT 1"))
		})

		It("propagates the handle's send failure", func() {
			c := newTestConnection(handle)
			sendErr := errors.New("boom")
			handle.failOn["BAD SQL"] = sendErr

			err := c.ExecuteCommand(context.Background(), "BAD SQL")
			Expect(err).To(Equal(sendErr))
		})

		It("wraps an unexplained fatal result", func() {
			c := newTestConnection(handle)
			handle.status["SELECT bad"] = protocol.ResultFatalError

			err := c.ExecuteCommand(context.Background(), "SELECT bad")
			Expect(err).To(HaveOccurred())
		})

		It("surfaces the handle's own LastError on a fatal result", func() {
			c := newTestConnection(handle)
			handle.status["SELECT bad"] = protocol.ResultFatalError
			handle.lastErr = fmt.Errorf("server says no")

			err := c.ExecuteCommand(context.Background(), "SELECT bad")
			Expect(err).To(Equal(handle.lastErr))
		})

		It("refuses to run once closed", func() {
			c := newTestConnection(handle)
			Expect(c.Close()).To(Succeed())

			err := c.ExecuteCommand(context.Background(), "SELECT 1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Commit and Rollback", func() {
		It("no-ops when the connection is already idle", func() {
			c := newTestConnection(handle)

			Expect(c.Commit(context.Background())).To(Succeed())
			Expect(c.Rollback(context.Background())).To(Succeed())
			Expect(handle.commands).To(BeEmpty())
		})

		It("is forbidden while a Scope is active", func() {
			c := newTestConnection(handle)

			_, err := c.Transaction(context.Background(), "", false)
			Expect(err).ToNot(HaveOccurred())

			err = c.Commit(context.Background())
			Expect(err).To(HaveOccurred())
			ce, ok := err.(libErrors.Error)
			Expect(ok).To(BeTrue())
			Expect(ce.IsCode(ErrorCommitInTransaction)).To(BeTrue())

			err = c.Rollback(context.Background())
			Expect(err).To(HaveOccurred())
			ce, ok = err.(libErrors.Error)
			Expect(ok).To(BeTrue())
			Expect(ce.IsCode(ErrorRollbackInTransaction)).To(BeTrue())
		})
	})

	Describe("Autocommit", func() {
		It("defaults to the value seeded at construction", func() {
			c, err := newConnection(context.Background(), Config{DSN: "x", Autocommit: true}, handle, fakeWaiter{}, pgmutex.NewNative(), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Autocommit()).To(BeTrue())
		})

		It("can be changed while idle and outside a Scope", func() {
			c := newTestConnection(handle)
			Expect(c.SetAutocommit(true)).To(Succeed())
			Expect(c.Autocommit()).To(BeTrue())
		})

		It("is forbidden while a Scope is active", func() {
			c := newTestConnection(handle)

			scope, err := c.Transaction(context.Background(), "", false)
			Expect(err).ToNot(HaveOccurred())

			err = c.SetAutocommit(true)
			Expect(err).To(HaveOccurred())
			ce, ok := err.(libErrors.Error)
			Expect(ok).To(BeTrue())
			Expect(ce.IsCode(ErrorAutocommitInTransaction)).To(BeTrue())

			Expect(scope.Exit(nil)).To(Succeed())
		})
	})

	Describe("Transaction", func() {
		It("emits BEGIN/COMMIT for an outer scope", func() {
			c := newTestConnection(handle)

			scope, err := c.Transaction(context.Background(), "", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(scope.IsOuter()).To(BeTrue())

			Expect(scope.Exit(nil)).To(Succeed())
			Expect(handle.commands).To(Equal([]string{"BEGIN", "COMMIT"}))
		})

		It("nests a named SAVEPOINT inside an already-open scope", func() {
			c := newTestConnection(handle)

			outer, err := c.Transaction(context.Background(), "", false)
			Expect(err).ToNot(HaveOccurred())

			inner, err := c.Transaction(context.Background(), "my_point", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(inner.SavepointName()).To(Equal("my_point"))

			Expect(inner.Exit(nil)).To(Succeed())
			Expect(outer.Exit(nil)).To(Succeed())

			Expect(handle.commands).To(Equal([]string{
				"BEGIN", "SAVEPOINT my_point", "RELEASE SAVEPOINT my_point", "COMMIT",
			}))
		})

		It("rolls back when forceRollback is set", func() {
			c := newTestConnection(handle)

			scope, err := c.Transaction(context.Background(), "", true)
			Expect(err).ToNot(HaveOccurred())

			Expect(scope.Exit(nil)).To(Succeed())
			Expect(handle.commands).To(Equal([]string{"BEGIN", "ROLLBACK"}))
		})
	})

	Describe("Close", func() {
		It("is idempotent", func() {
			c := newTestConnection(handle)
			Expect(c.Close()).To(Succeed())
			Expect(c.Close()).To(Succeed())
			Expect(handle.closed).To(BeTrue())
		})
	})
})
