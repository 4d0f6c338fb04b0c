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

import "strings"

// isURIForm reports whether dsn uses the postgres://... URI form rather
// than libpq's keyword/value form. Overrides only decompose the
// keyword/value form; a URI DSN is passed through Final unmodified, since
// splicing keyword overrides into a URI's query string would require a
// second, URI-specific parser for no real gain here.
func isURIForm(dsn string) bool {
	trimmed := strings.TrimSpace(dsn)
	return strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://")
}

// parseKeywordDSN splits a libpq keyword/value connection string
// ("host=localhost port=5432 dbname=mydb") into a key/value map. Values
// may be single-quoted to carry embedded spaces; a backslash escapes the
// following character inside a quoted value, matching libpq's conninfo
// grammar. Malformed tokens (no '=', or the final unterminated quote) are
// dropped rather than rejected: this is best-effort decomposition for
// override merging, not a validating parser — pgconn.ParseConfig is the
// authority on whether the resulting string is well-formed.
func parseKeywordDSN(dsn string) map[string]string {
	out := map[string]string{}
	runes := []rune(dsn)
	i := 0
	n := len(runes)

	skipSpace := func() {
		for i < n && runes[i] == ' ' {
			i++
		}
	}

	for {
		skipSpace()
		if i >= n {
			break
		}

		start := i
		for i < n && runes[i] != '=' && runes[i] != ' ' {
			i++
		}
		if i >= n || runes[i] != '=' {
			// No '=' before the next space/EOF: not a valid token, skip it.
			for i < n && runes[i] != ' ' {
				i++
			}
			continue
		}
		key := string(runes[start:i])
		i++ // consume '='

		var val strings.Builder
		terminated := true
		if i < n && runes[i] == '\'' {
			i++ // consume opening quote
			for i < n && runes[i] != '\'' {
				if runes[i] == '\\' && i+1 < n {
					i++
				}
				val.WriteRune(runes[i])
				i++
			}
			if i < n {
				i++ // consume closing quote
			} else {
				terminated = false
			}
		} else {
			for i < n && runes[i] != ' ' {
				val.WriteRune(runes[i])
				i++
			}
		}

		if key != "" && terminated {
			out[key] = val.String()
		}
	}

	return out
}

// needsQuoting reports whether v must be single-quoted to round-trip
// through parseKeywordDSN.
func needsQuoting(v string) bool {
	return v == "" || strings.ContainsAny(v, " '\\")
}

// buildKeywordDSN serializes kv back into libpq keyword/value form, in
// lexical key order for a deterministic, diffable result.
func buildKeywordDSN(kv map[string]string) string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sortStrings(keys)

	var out strings.Builder
	for idx, k := range keys {
		if idx > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(k)
		out.WriteByte('=')

		v := kv[k]
		if !needsQuoting(v) {
			out.WriteString(v)
			continue
		}

		out.WriteByte('\'')
		for _, r := range v {
			if r == '\'' || r == '\\' {
				out.WriteByte('\\')
			}
			out.WriteRune(r)
		}
		out.WriteByte('\'')
	}
	return out.String()
}

// sortStrings is a tiny insertion sort: the key counts here are always a
// handful of connection keywords, not worth pulling in sort for.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
