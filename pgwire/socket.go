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
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// dialNonblocking creates a non-blocking TCP socket and starts connecting it
// to host:port. The connect is almost always still in progress (EINPROGRESS)
// when this returns; finishConnect polls it to completion, mirroring the
// same raw unix.Poll idiom the waiter package uses for steady-state I/O.
func dialNonblocking(host string, port uint16) (int, error) {
	addrs, err := net.LookupIP(host)
	if err != nil {
		return -1, ErrorSocket.Error(err)
	}
	if len(addrs) == 0 {
		return -1, ErrorSocket.Error(fmt.Errorf("no address found for host %s", host))
	}

	ip := addrs[0]
	domain := unix.AF_INET
	if ip.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, ErrorSocket.Error(err)
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, ErrorSocket.Error(err)
	}

	var sa unix.Sockaddr
	if domain == unix.AF_INET {
		var a [4]byte
		copy(a[:], ip.To4())
		sa = &unix.SockaddrInet4{Port: int(port), Addr: a}
	} else {
		var a [16]byte
		copy(a[:], ip.To16())
		sa = &unix.SockaddrInet6{Port: int(port), Addr: a}
	}

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, ErrorConnectFailed.Error(err)
	}

	return fd, nil
}

// finishConnect checks whether a non-blocking connect(2) has completed.
// Called once the descriptor reports writable.
func finishConnect(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return ErrorConnectFailed.Error(err)
	}
	if errno != 0 {
		return ErrorConnectFailed.Error(unix.Errno(errno))
	}
	return nil
}
