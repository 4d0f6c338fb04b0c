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

import "github.com/nabbar/golib/errors"

const (
	// ErrorParseDSN is raised when the connection string cannot be parsed.
	ErrorParseDSN errors.CodeError = iota + errors.MinAvailable + 200
	// ErrorSocket is raised when the raw socket cannot be created or dialed.
	ErrorSocket
	// ErrorConnectFailed is raised when the TCP handshake itself fails.
	ErrorConnectFailed
	// ErrorSSLRejected is raised when sslmode requires TLS and the server
	// refused the SSLRequest negotiation byte.
	ErrorSSLRejected
	// ErrorSSLHandshake is raised when the TLS handshake over an accepted
	// SSLRequest fails.
	ErrorSSLHandshake
	// ErrorUnsupportedAuth is raised when the server asks for an
	// authentication method this adapter does not implement (anything
	// beyond trust, cleartext password, and MD5).
	ErrorUnsupportedAuth
	// ErrorAuthFailed is raised when the server rejects the submitted
	// credentials with an ErrorResponse during startup.
	ErrorAuthFailed
	// ErrorStartupFailed is raised by any other ErrorResponse seen before
	// the first ReadyForQuery.
	ErrorStartupFailed
	// ErrorRead is raised when reading from the socket fails for a reason
	// other than the non-blocking would-block condition.
	ErrorRead
	// ErrorWrite is raised when writing to the socket fails for a reason
	// other than the non-blocking would-block condition.
	ErrorWrite
	// ErrorNotConnected is raised by any query operation attempted before
	// StartConnect/PollConnect has reached ConnectPollOK.
	ErrorNotConnected
	// ErrorClosed is raised by any operation attempted after Close().
	ErrorClosed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParseDSN)
	errors.RegisterIdFctMessage(ErrorParseDSN, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorParseDSN:
		return "could not parse connection string"
	case ErrorSocket:
		return "could not create socket"
	case ErrorConnectFailed:
		return "TCP connect failed"
	case ErrorSSLRejected:
		return "server rejected SSL negotiation while sslmode requires it"
	case ErrorSSLHandshake:
		return "TLS handshake over accepted SSLRequest failed"
	case ErrorUnsupportedAuth:
		return "server requested an unsupported authentication method"
	case ErrorAuthFailed:
		return "authentication rejected by server"
	case ErrorStartupFailed:
		return "startup failed"
	case ErrorRead:
		return "read from connection failed"
	case ErrorWrite:
		return "write to connection failed"
	case ErrorNotConnected:
		return "connect has not completed"
	case ErrorClosed:
		return "connection is closed"
	}

	return ""
}
