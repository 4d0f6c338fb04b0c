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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	Describe("Merge", func() {
		It("lets an override replace a parsed value", func() {
			cfg := Config{Overrides: map[string]string{"host": "replica"}}
			got := cfg.Merge(map[string]string{"host": "primary", "port": "5432"})
			Expect(got).To(Equal(map[string]string{"host": "replica", "port": "5432"}))
		})

		It("drops a key when the override value is empty", func() {
			cfg := Config{Overrides: map[string]string{"sslmode": ""}}
			got := cfg.Merge(map[string]string{"sslmode": "require", "dbname": "app"})
			Expect(got).To(Equal(map[string]string{"dbname": "app"}))
		})
	})

	Describe("Final", func() {
		It("returns the DSN unchanged when there are no overrides", func() {
			cfg := Config{DSN: "host=localhost port=5432 dbname=app"}
			Expect(cfg.Final()).To(Equal(cfg.DSN))
		})

		It("returns a URI-form DSN unchanged regardless of overrides", func() {
			cfg := Config{
				DSN:       "postgres://bob@localhost:5432/app",
				Overrides: map[string]string{"host": "replica"},
			}
			Expect(cfg.Final()).To(Equal(cfg.DSN))
		})

		It("splices overrides into a keyword-form DSN, right-hand-wins", func() {
			cfg := Config{
				DSN:       "host=localhost port=5432 dbname=app",
				Overrides: map[string]string{"host": "replica", "sslmode": "require"},
			}
			out := cfg.Final()
			Expect(out).To(ContainSubstring("host=replica"))
			Expect(out).To(ContainSubstring("port=5432"))
			Expect(out).To(ContainSubstring("dbname=app"))
			Expect(out).To(ContainSubstring("sslmode=require"))
			Expect(out).ToNot(ContainSubstring("host=localhost"))
		})

		It("drops a keyword entirely when its override is empty", func() {
			cfg := Config{
				DSN:       "host=localhost port=5432 sslmode=require",
				Overrides: map[string]string{"sslmode": ""},
			}
			Expect(cfg.Final()).ToNot(ContainSubstring("sslmode"))
		})

		It("quotes a value containing a space", func() {
			cfg := Config{
				DSN:       "host=localhost",
				Overrides: map[string]string{"application_name": "pg client demo"},
			}
			Expect(cfg.Final()).To(ContainSubstring(`application_name='pg client demo'`))
		})
	})

	Describe("InitialClientEncoding", func() {
		It("returns empty when PGCLIENTENCODING is unset", func() {
			Expect(InitialClientEncoding()).To(BeEmpty())
		})
	})
})
