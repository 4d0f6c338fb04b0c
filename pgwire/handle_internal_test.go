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

// White-box specs: md5Password/txStatusFromByte/errorResponseToError/
// encodeSSLRequest are unexported, and the non-blocking dial/handshake
// state machine needs a real socket to exercise end to end, so only the
// pieces that are pure functions of their inputs are covered here.
package pgwire

import (
	"encoding/binary"

	"github.com/jackc/pgx/v5/pgproto3"

	"github.com/sabouaram/pgdriver/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("md5Password", func() {
	It("matches PostgreSQL's two-round MD5 challenge", func() {
		got := md5Password("bob", "secret", [4]byte{0x01, 0x02, 0x03, 0x04})
		Expect(got).To(HavePrefix("md5"))
		Expect(got).To(HaveLen(35))
	})

	It("is deterministic for the same inputs", func() {
		salt := [4]byte{0xaa, 0xbb, 0xcc, 0xdd}
		Expect(md5Password("alice", "hunter2", salt)).To(Equal(md5Password("alice", "hunter2", salt)))
	})

	It("changes when the salt changes", func() {
		a := md5Password("alice", "hunter2", [4]byte{0, 0, 0, 0})
		b := md5Password("alice", "hunter2", [4]byte{0, 0, 0, 1})
		Expect(a).ToNot(Equal(b))
	})
})

var _ = Describe("txStatusFromByte", func() {
	It("maps the wire bytes to TxStatus", func() {
		Expect(txStatusFromByte('I')).To(Equal(protocol.TxIdle))
		Expect(txStatusFromByte('T')).To(Equal(protocol.TxInTrans))
		Expect(txStatusFromByte('E')).To(Equal(protocol.TxInError))
		Expect(txStatusFromByte('?')).To(Equal(protocol.TxUnknown))
	})
})

var _ = Describe("errorResponseToError", func() {
	It("renders severity, code and message", func() {
		err := errorResponseToError(&pgproto3.ErrorResponse{
			Severity: "FATAL",
			Code:     "28P01",
			Message:  "password authentication failed",
		})
		Expect(err.Error()).To(ContainSubstring("FATAL"))
		Expect(err.Error()).To(ContainSubstring("28P01"))
		Expect(err.Error()).To(ContainSubstring("password authentication failed"))
	})
})

var _ = Describe("encodeSSLRequest", func() {
	It("encodes the well-known 8-byte SSLRequest", func() {
		buf := encodeSSLRequest()
		Expect(buf).To(HaveLen(8))
		Expect(binary.BigEndian.Uint32(buf[0:4])).To(Equal(uint32(8)))
		Expect(binary.BigEndian.Uint32(buf[4:8])).To(Equal(sslRequestCode))
	})
})

var _ = Describe("Handle", func() {
	It("starts idle with no parameters, notices or notifications", func() {
		h := New()
		Expect(h.TxStatus()).To(Equal(protocol.TxIdle))

		_, ok := h.ParameterStatus("client_encoding")
		Expect(ok).To(BeFalse())

		Expect(h.DrainNotices()).To(BeEmpty())
		Expect(h.DrainNotifications()).To(BeEmpty())
		Expect(h.LastError()).To(BeNil())
	})

	It("refuses SendQuery before a connection is established", func() {
		h := New()
		err := h.SendQuery("SELECT 1")
		Expect(err).To(HaveOccurred())
	})

	Describe("Escape", func() {
		It("wraps a plain literal in single quotes", func() {
			h := New()
			Expect(h.Escape("hello")).To(Equal("'hello'"))
		})

		It("doubles embedded single quotes", func() {
			h := New()
			Expect(h.Escape("O'Brien")).To(Equal("'O''Brien'"))
		})
	})

	It("is idempotent to Close before any connection was made", func() {
		h := New()
		Expect(h.Close()).To(Succeed())
		Expect(h.Close()).To(Succeed())
	})
})
