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

package pgwire

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgproto3"

	"github.com/sabouaram/pgdriver/protocol"
)

// md5Password implements PostgreSQL's two-round MD5 challenge: hash the
// password concatenated with the username, hex-encode, concatenate with the
// 4-byte server salt, hash and hex-encode again, and prefix with "md5".
// SCRAM-SHA-256 is not implemented; see the package doc comment.
func md5Password(user, password string, salt [4]byte) string {
	inner := md5Hex([]byte(password + user))
	outer := md5Hex(append([]byte(inner), salt[:]...))
	return "md5" + outer
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

func txStatusFromByte(b byte) protocol.TxStatus {
	switch b {
	case 'I':
		return protocol.TxIdle
	case 'T':
		return protocol.TxInTrans
	case 'E':
		return protocol.TxInError
	default:
		return protocol.TxUnknown
	}
}

func errorResponseToError(m *pgproto3.ErrorResponse) error {
	return fmt.Errorf("%s [%s]: %s", m.Severity, m.Code, m.Message)
}

func noticeFromResponse(m *pgproto3.NoticeResponse) protocol.Notice {
	return protocol.Notice{Severity: m.Severity, Message: m.Message}
}
