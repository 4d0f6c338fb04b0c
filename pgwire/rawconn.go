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
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// errWouldBlock is returned by rawConn's Read/Write when the non-blocking
// descriptor has no data or buffer space available yet. Callers translate
// it into a WaitReadable/WaitWritable request rather than a fatal error.
var errWouldBlock = errors.New("pgwire: operation would block")

// isWouldBlock reports whether err is the rawConn would-block sentinel, at
// any wrapping depth.
func isWouldBlock(err error) bool {
	return errors.Is(err, errWouldBlock)
}

// rawConn adapts a non-blocking socket descriptor to io.Reader/io.Writer so
// it can back a pgproto3.Frontend. It never blocks the calling goroutine:
// EAGAIN/EWOULDBLOCK is reported as errWouldBlock instead of looping or
// parking, leaving the park-until-ready decision to the Handle's own
// ConnectPollStatus/WaitEvent bookkeeping.
type rawConn struct {
	fd int
}

func (c *rawConn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, errWouldBlock
		}
		if err == unix.EINTR {
			return 0, errWouldBlock
		}
		return 0, ErrorRead.Error(err)
	}
	if n == 0 {
		return 0, ErrorRead.Error(net.ErrClosed)
	}
	return n, nil
}

// Write honors the io.Writer contract (return err != nil whenever n <
// len(p)) by retrying short writes until the buffer is fully drained or the
// socket reports it would block. A partial write followed by errWouldBlock
// is expected: the caller flushes the remainder on the next writable tick.
func (c *rawConn) Write(p []byte) (int, error) {
	var written int
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		written += n
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				return written, errWouldBlock
			}
			return written, ErrorWrite.Error(err)
		}
		if n == 0 {
			return written, errWouldBlock
		}
	}
	return written, nil
}

// The remaining methods exist only so rawConn satisfies net.Conn, which lets
// it back a tls.Client for the one-time TLS handshake (see
// withBlocking). Steady-state traffic never calls them.

func (c *rawConn) Close() error { return unix.Close(c.fd) }

func (c *rawConn) LocalAddr() net.Addr  { return nil }
func (c *rawConn) RemoteAddr() net.Addr { return nil }

func (c *rawConn) SetDeadline(t time.Time) error      { return nil }
func (c *rawConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *rawConn) SetWriteDeadline(t time.Time) error { return nil }

// withBlocking runs fn with the descriptor temporarily switched to blocking
// mode, restoring non-blocking mode before returning. crypto/tls's Conn
// assumes a blocking net.Conn during Handshake; everything else this driver
// does over the wire stays strictly non-blocking.
func (c *rawConn) withBlocking(fn func() error) error {
	if err := unix.SetNonblock(c.fd, false); err != nil {
		return ErrorSocket.Error(err)
	}
	defer func() { _ = unix.SetNonblock(c.fd, true) }()
	return fn()
}
