/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package transaction_test

import (
	"context"

	"github.com/sabouaram/pgdriver/protocol"
	"github.com/sabouaram/pgdriver/transaction"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scope", func() {
	var (
		host *fakeHost
		ctx  context.Context
	)

	BeforeEach(func() {
		host = newFakeHost()
		ctx = context.Background()
	})

	// Scenario 1: basic scope.
	It("emits BEGIN/COMMIT for a plain successful scope", func() {
		Expect(host.TxStatus()).To(Equal(protocol.TxIdle))

		sc := transaction.New(host, ctx, "", false)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())
		Expect(host.TxStatus()).To(Equal(protocol.TxInTrans))

		Expect(entered.Exit(nil)).ToNot(HaveOccurred())
		Expect(host.commands).To(Equal([]string{"BEGIN", "COMMIT"}))
		Expect(host.TxStatus()).To(Equal(protocol.TxIdle))
		Expect(sc.State()).To(Equal(transaction.StateCommitted))
	})

	// Scenario 2: rollback on exception.
	It("emits BEGIN/ROLLBACK when exiting with an error", func() {
		sc := transaction.New(host, ctx, "", false)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())

		exitErr := entered.Exit(errTestCommandFailed)
		Expect(exitErr).To(Equal(error(errTestCommandFailed)))
		Expect(host.commands).To(Equal([]string{"BEGIN", "ROLLBACK"}))
		Expect(sc.State()).To(Equal(transaction.StateRolledBack))
	})

	// Scenario 3: nested success.
	It("uses a savepoint for a nested scope and releases it on success", func() {
		outer := transaction.New(host, ctx, "", false)
		outerEntered, err := outer.Enter()
		Expect(err).ToNot(HaveOccurred())

		inner := transaction.New(host, ctx, "", false)
		innerEntered, err := inner.Enter()
		Expect(err).ToNot(HaveOccurred())
		Expect(innerEntered.SavepointName()).To(Equal("tx_savepoint_1"))

		Expect(innerEntered.Exit(nil)).ToNot(HaveOccurred())
		Expect(outerEntered.Exit(nil)).ToNot(HaveOccurred())

		Expect(host.commands).To(Equal([]string{
			"BEGIN",
			"SAVEPOINT tx_savepoint_1",
			"RELEASE SAVEPOINT tx_savepoint_1",
			"COMMIT",
		}))
	})

	// Scenario 4: nested inner exception caught by the outer scope.
	It("rolls back to savepoint on an inner failure, letting the outer scope commit", func() {
		outer := transaction.New(host, ctx, "", false)
		outerEntered, err := outer.Enter()
		Expect(err).ToNot(HaveOccurred())

		inner := transaction.New(host, ctx, "", false)
		innerEntered, err := inner.Enter()
		Expect(err).ToNot(HaveOccurred())

		Expect(innerEntered.Exit(errTestCommandFailed)).To(HaveOccurred())
		Expect(outerEntered.Exit(nil)).ToNot(HaveOccurred())

		Expect(host.commands).To(Equal([]string{
			"BEGIN",
			"SAVEPOINT tx_savepoint_1",
			"ROLLBACK TO SAVEPOINT tx_savepoint_1",
			"COMMIT",
		}))
	})

	// Scenario 5: named savepoint requested at the outer level.
	It("emits BEGIN then a named SAVEPOINT when a name is given at IDLE", func() {
		sc := transaction.New(host, ctx, "foo", false)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())
		Expect(entered.SavepointName()).To(Equal("foo"))

		Expect(entered.Exit(nil)).ToNot(HaveOccurred())
		Expect(host.commands).To(Equal([]string{
			"BEGIN",
			"SAVEPOINT foo",
			"RELEASE SAVEPOINT foo",
			"COMMIT",
		}))
	})

	// Scenario 6: force rollback on an otherwise successful exit.
	It("rolls back on a clean exit when force_rollback is set", func() {
		sc := transaction.New(host, ctx, "", true)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())

		Expect(entered.Exit(nil)).ToNot(HaveOccurred())
		Expect(host.commands).To(Equal([]string{"BEGIN", "ROLLBACK"}))
	})

	// Scenario 7: autocommit preservation.
	It("restores autocommit to its pre-enter value on exit", func() {
		host.SetAutocommitRaw(true)

		sc := transaction.New(host, ctx, "", false)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())
		Expect(host.Autocommit()).To(BeFalse())

		Expect(entered.Exit(nil)).ToNot(HaveOccurred())
		Expect(host.Autocommit()).To(BeTrue())
	})

	It("swallows a Rollback signal targeting the current scope", func() {
		sc := transaction.New(host, ctx, "", false)
		entered, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())

		rb := entered.Rollback()
		Expect(entered.Exit(rb)).ToNot(HaveOccurred())
		Expect(host.commands).To(Equal([]string{"BEGIN", "ROLLBACK"}))
	})

	It("re-raises a Rollback signal targeting an enclosing scope", func() {
		outer := transaction.New(host, ctx, "", false)
		outerEntered, err := outer.Enter()
		Expect(err).ToNot(HaveOccurred())

		inner := transaction.New(host, ctx, "", false)
		innerEntered, err := inner.Enter()
		Expect(err).ToNot(HaveOccurred())

		rb := outerEntered.Rollback()
		Expect(innerEntered.Exit(rb)).To(Equal(error(rb)))
		Expect(outerEntered.Exit(rb)).ToNot(HaveOccurred())

		Expect(host.commands).To(Equal([]string{
			"BEGIN",
			"SAVEPOINT tx_savepoint_1",
			"ROLLBACK TO SAVEPOINT tx_savepoint_1",
			"ROLLBACK",
		}))
	})

	It("rejects entering the same scope twice", func() {
		sc := transaction.New(host, ctx, "", false)
		_, err := sc.Enter()
		Expect(err).ToNot(HaveOccurred())

		_, err = sc.Enter()
		Expect(err).To(HaveOccurred())
	})
})
