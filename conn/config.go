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

import "os"

// Config merges a base DSN with keyword overrides before a connect_flow
// is started. Overrides follow right-hand-wins: a key present (and
// non-empty) in Overrides replaces whatever the DSN or a previous
// Overrides call set. The Autocommit keyword is consumed here and never
// forwarded to the wire-level DSN; it only seeds Connection.autocommit.
type Config struct {
	// DSN is the base connection string (postgres://... or keyword/value
	// form), as accepted by the underlying pgconn.ParseConfig.
	DSN string

	// Overrides are keyword/value pairs merged onto DSN, right-hand-wins.
	// An empty value for a key drops that key from the merged DSN.
	Overrides map[string]string

	// Autocommit seeds the connection's autocommit flag. It is consumed
	// here, never forwarded as a DSN keyword PostgreSQL itself would not
	// recognize.
	Autocommit bool
}

// Merge produces the final keyword/value set to hand to the protocol
// adapter: it starts from parsed (the DSN's keyword/value pairs), then
// applies Overrides, dropping any key whose override value is empty.
func (c Config) Merge(parsed map[string]string) map[string]string {
	out := make(map[string]string, len(parsed)+len(c.Overrides))
	for k, v := range parsed {
		out[k] = v
	}
	for k, v := range c.Overrides {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Final produces the connection string connect_flow is started with: DSN
// with Overrides spliced in, right-hand-wins, per spec.md §6. A URI-form
// DSN (postgres://...) is returned unchanged — overrides only decompose
// the keyword/value form; pass keyword/value DSNs when Overrides is
// non-empty. Autocommit is never part of the result: it is consumed by
// Connection construction, not forwarded to the wire.
func (c Config) Final() string {
	if len(c.Overrides) == 0 || isURIForm(c.DSN) {
		return c.DSN
	}
	return buildKeywordDSN(c.Merge(parseKeywordDSN(c.DSN)))
}

// InitialClientEncoding returns the value PGCLIENTENCODING sets for the
// session's initial client_encoding negotiation, or "" if unset. The
// environment is consulted once at connect time, per spec.md §6; the
// protocol adapter is responsible for folding this into the startup
// parameters it sends.
func InitialClientEncoding() string {
	return os.Getenv("PGCLIENTENCODING")
}
