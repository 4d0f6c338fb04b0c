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
	"github.com/nabbar/golib/certificates"
	"github.com/nabbar/golib/logger"
)

// Option configures a Handle before StartConnect is called.
type Option func(*Handle)

// WithTLS overrides whatever *tls.Config the DSN's sslmode/sslrootcert/
// sslcert/sslkey keywords produced with one built from a certificates.
// TLSConfig: cipher suite and curve restrictions, client certificate
// authentication, and a root CA pool assembled from multiple sources are
// all things a bare DSN cannot express. It has no effect when sslmode is
// disable or allow, since the Handle then sends no SSLRequest.
func WithTLS(cfg certificates.TLSConfig) Option {
	return func(h *Handle) {
		h.tlsOverride = cfg
	}
}

// WithLogger attaches a logger.FuncLog used for the one event this adapter
// logs on its own: an error encountered while closing the underlying
// descriptor. TLS handshake failures are returned as ErrorSSLHandshake, not
// logged. log may be nil.
func WithLogger(log logger.FuncLog) Option {
	return func(h *Handle) {
		h.log = log
	}
}

// New returns a Handle ready for StartConnect. Construction never touches
// the network; StartConnect parses the DSN and begins dialing.
func New(opts ...Option) *Handle {
	h := &Handle{fd: -1, params: map[string]string{}}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	return h
}
