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
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Table resolves a PostgreSQL client_encoding name to a golang.org/x/text
// Encoding. Unknown names, and PostgreSQL's own SQL_ASCII, fall back to
// encoding.Nop (byte-identity passthrough), matching the ASCII-fallback
// spec.md §3 requires rather than raising NotSupportedError eagerly.
type Table struct{}

// pgToIANA maps the PostgreSQL server-encoding names that differ from
// their IANA charset name. Names not listed here are passed to
// ianaindex.IANA as-is.
var pgToIANA = map[string]string{
	"UTF8":     "UTF-8",
	"LATIN1":   "ISO-8859-1",
	"LATIN2":   "ISO-8859-2",
	"LATIN9":   "ISO-8859-15",
	"WIN1250":  "windows-1250",
	"WIN1251":  "windows-1251",
	"WIN1252":  "windows-1252",
	"KOI8R":    "KOI8-R",
	"KOI8U":    "KOI8-U",
	"EUC_JP":   "EUC-JP",
	"EUC_KR":   "EUC-KR",
	"SJIS":     "Shift_JIS",
	"SQL_ASCII": "",
}

// Resolve returns the Encoding for a PostgreSQL client_encoding name, and
// whether the name was recognized. An unrecognized name (including
// SQL_ASCII, which PostgreSQL itself treats as "no real encoding")
// resolves to encoding.Nop with ok == false.
func (Table) Resolve(pgName string) (enc encoding.Encoding, ok bool) {
	name, known := pgToIANA[strings.ToUpper(pgName)]
	if known && name == "" {
		return encoding.Nop, false
	}
	if !known {
		name = pgName
	}

	e, err := ianaindex.IANA.Encoding(name)
	if err != nil || e == nil {
		return encoding.Nop, false
	}
	return e, true
}

// ClientEncoding returns the cached client_encoding name, refreshing the
// cache from the handle's parameter_status whenever the server-reported
// value has changed since the last read.
func (c *connection) ClientEncoding(ctx context.Context) (string, error) {
	name, _ := c.handle.ParameterStatus("client_encoding")
	if name == "" {
		name = "SQL_ASCII"
	}

	c.encMu.Lock()
	defer c.encMu.Unlock()

	if name != c.encName {
		c.encName = name
	}
	return c.encName, nil
}

// SetClientEncoding issues SET client_encoding TO <value> and invalidates
// the cache so the next ClientEncoding call re-reads the server's
// confirmed value.
func (c *connection) SetClientEncoding(ctx context.Context, name string) error {
	if err := c.ExecuteCommand(ctx, "SET client_encoding TO "+name); err != nil {
		return err
	}

	c.encMu.Lock()
	c.encName = ""
	c.encMu.Unlock()
	return nil
}

// Encoding resolves the current client_encoding name to a
// golang.org/x/text Encoding via Table, refreshing the name first.
func (c *connection) Encoding(ctx context.Context) (encoding.Encoding, error) {
	name, err := c.ClientEncoding(ctx)
	if err != nil {
		return encoding.Nop, err
	}

	enc, _ := c.encTable.Resolve(name)
	return enc, nil
}
