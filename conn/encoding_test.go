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

	"golang.org/x/text/encoding"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table", func() {
	It("resolves PostgreSQL names that differ from their IANA name", func() {
		enc, ok := Table{}.Resolve("UTF8")
		Expect(ok).To(BeTrue())
		Expect(enc).ToNot(Equal(encoding.Nop))
	})

	It("falls back to ianaindex for names it doesn't special-case", func() {
		enc, ok := Table{}.Resolve("ISO-8859-1")
		Expect(ok).To(BeTrue())
		Expect(enc).ToNot(BeNil())
	})

	It("treats SQL_ASCII as unrepresentable", func() {
		enc, ok := Table{}.Resolve("SQL_ASCII")
		Expect(ok).To(BeFalse())
		Expect(enc).To(Equal(encoding.Nop))
	})

	It("falls back to Nop for a name it cannot map at all", func() {
		enc, ok := Table{}.Resolve("NOT_A_REAL_ENCODING")
		Expect(ok).To(BeFalse())
		Expect(enc).To(Equal(encoding.Nop))
	})
})

var _ = Describe("connection client_encoding", func() {
	var handle *fakeHandle

	BeforeEach(func() {
		handle = newFakeHandle()
	})

	It("defaults to SQL_ASCII when the handle reports nothing", func() {
		c := newTestConnection(handle)

		name, err := c.ClientEncoding(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(Equal("SQL_ASCII"))
	})

	It("reflects the handle's reported parameter", func() {
		handle.params["client_encoding"] = "UTF8"
		c := newTestConnection(handle)

		name, err := c.ClientEncoding(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(Equal("UTF8"))
	})

	It("issues the literal SET client_encoding command and invalidates its cache", func() {
		handle.params["client_encoding"] = "SQL_ASCII"
		c := newTestConnection(handle)

		Expect(c.SetClientEncoding(context.Background(), "UTF8")).To(Succeed())
		Expect(handle.commands).To(Equal([]string{"SET client_encoding TO UTF8"}))

		handle.params["client_encoding"] = "UTF8"
		name, err := c.ClientEncoding(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(Equal("UTF8"))
	})

	It("resolves the current client_encoding to an x/text Encoding", func() {
		handle.params["client_encoding"] = "LATIN1"
		c := newTestConnection(handle)

		enc, err := c.Encoding(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(enc).ToNot(Equal(encoding.Nop))
	})
})
