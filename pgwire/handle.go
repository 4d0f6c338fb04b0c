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

// Package pgwire is the concrete protocol.Handle binding over a real
// PostgreSQL wire connection. It parses DSNs with jackc/pgx/v5/pgconn and
// encodes/decodes messages with jackc/pgx/v5/pgproto3, but owns the socket
// itself: every step is driven by golang.org/x/sys/unix against a
// non-blocking descriptor, never by pgconn's own (blocking) connection
// establishment.
//
// Supported authentication methods are trust, cleartext password, and MD5.
// SCRAM-SHA-256 (the default since PostgreSQL 14) is not implemented; a
// server configured to require it fails the handshake with
// ErrorUnsupportedAuth. Wiring golang.org/x/crypto's SCRAM support is future
// work, not attempted here.
package pgwire

import (
	"crypto/tls"
	"encoding/binary"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
	"golang.org/x/sys/unix"

	"github.com/nabbar/golib/certificates"
	"github.com/nabbar/golib/logger"
	"github.com/sabouaram/pgdriver/protocol"
)

const sslRequestCode uint32 = 80877103

type connState uint8

const (
	stateInit connState = iota
	stateDialing
	stateSSLSending
	stateSSLReading
	stateSSLHandshaking
	stateStartupSending
	statePasswordSending
	stateHandshaking
	stateReady
	stateFailed
)

// Handle is the pgwire protocol.Handle implementation. A zero Handle is not
// usable; construct one with New.
type Handle struct {
	mu sync.Mutex

	tlsOverride certificates.TLSConfig
	log         logger.FuncLog

	cfg *pgconn.Config
	fd  int
	raw *rawConn
	tls *tls.Conn

	frontend *pgproto3.Frontend

	state   connState
	connErr error

	pendingOut []byte

	txStatus protocol.TxStatus
	params   map[string]string
	lastErr  error

	building *protocol.Result
	pending  *protocol.Result

	notices   []protocol.Notice
	notifies  []protocol.Notify

	closed bool
}

// StartConnect parses dsn and begins a non-blocking TCP dial. It returns
// immediately; PollConnect drives the handshake to completion.
func (h *Handle) StartConnect(dsn string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return ErrorParseDSN.Error(err)
	}
	h.cfg = cfg

	if h.tlsOverride != nil && cfg.TLSConfig != nil {
		h.cfg.TLSConfig = h.tlsOverride.TLS(cfg.Host)
	}

	fd, err := dialNonblocking(cfg.Host, cfg.Port)
	if err != nil {
		return err
	}

	h.fd = fd
	h.raw = &rawConn{fd: fd}
	h.params = map[string]string{}
	h.state = stateDialing
	return nil
}

// PollConnect advances the connect/handshake state machine by one step.
func (h *Handle) PollConnect(ready protocol.ReadyEvent) (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pollConnectLocked()
}

func (h *Handle) pollConnectLocked() (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	switch h.state {
	case stateFailed:
		return protocol.ConnectPollFailed, protocol.WaitNone, h.connErr
	case stateReady:
		return protocol.ConnectPollOK, protocol.WaitNone, nil

	case stateDialing:
		if err := finishConnect(h.fd); err != nil {
			if isWouldBlock(err) {
				return protocol.ConnectPollNeedsWrite, protocol.WaitWritable, nil
			}
			return h.fail(err)
		}
		if h.cfg.TLSConfig != nil {
			h.pendingOut = encodeSSLRequest()
			h.state = stateSSLSending
			return h.pollConnectLocked()
		}
		return h.startStartup()

	case stateSSLSending:
		n, err := h.raw.Write(h.pendingOut)
		h.pendingOut = h.pendingOut[n:]
		if err != nil {
			if isWouldBlock(err) {
				return protocol.ConnectPollNeedsWrite, protocol.WaitWritable, nil
			}
			return h.fail(err)
		}
		h.state = stateSSLReading
		return h.pollConnectLocked()

	case stateSSLReading:
		accepted, err := h.readSSLResponse()
		if err != nil {
			if isWouldBlock(err) {
				return protocol.ConnectPollNeedsRead, protocol.WaitReadable, nil
			}
			return h.fail(err)
		}
		if !accepted {
			return h.fail(ErrorSSLRejected.Error(nil))
		}
		h.state = stateSSLHandshaking
		return h.pollConnectLocked()

	case stateSSLHandshaking:
		if err := h.upgradeTLS(); err != nil {
			return h.fail(err)
		}
		return h.startStartup()

	case stateStartupSending, statePasswordSending, stateHandshaking:
		return h.pollHandshake()
	}

	return protocol.ConnectPollFailed, protocol.WaitNone, ErrorConnectFailed.Error(nil)
}

func (h *Handle) fail(err error) (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	h.state = stateFailed
	h.connErr = err
	return protocol.ConnectPollFailed, protocol.WaitNone, err
}

func encodeSSLRequest() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], 8)
	binary.BigEndian.PutUint32(buf[4:8], sslRequestCode)
	return buf
}

func (h *Handle) readSSLResponse() (bool, error) {
	var b [1]byte
	n, err := h.raw.Read(b[:])
	if err != nil {
		return false, err
	}
	if n != 1 {
		return false, errWouldBlock
	}
	return b[0] == 'S', nil
}

// upgradeTLS runs the TLS handshake. crypto/tls requires a blocking
// net.Conn for Handshake, so the descriptor is switched to blocking mode
// for the duration of the call and switched back immediately after; every
// other step this Handle takes stays strictly non-blocking.
func (h *Handle) upgradeTLS() error {
	cfg := h.cfg.TLSConfig
	if cfg == nil {
		cfg = &tls.Config{ServerName: h.cfg.Host}
	}

	client := tls.Client(h.raw, cfg)
	if err := h.raw.withBlocking(client.Handshake); err != nil {
		return ErrorSSLHandshake.Error(err)
	}
	h.tls = client
	return nil
}

func (h *Handle) reader() interface {
	Read(p []byte) (int, error)
} {
	if h.tls != nil {
		return h.tls
	}
	return h.raw
}

func (h *Handle) writer() interface {
	Write(p []byte) (int, error)
} {
	if h.tls != nil {
		return h.tls
	}
	return h.raw
}

func (h *Handle) startStartup() (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	h.frontend = pgproto3.NewFrontend(h.reader(), h.writer())

	params := map[string]string{
		"user":     h.cfg.User,
		"database": h.cfg.Database,
	}
	for k, v := range h.cfg.RuntimeParams {
		params[k] = v
	}
	if _, ok := params["client_encoding"]; !ok {
		if enc := os.Getenv("PGCLIENTENCODING"); enc != "" {
			params["client_encoding"] = enc
		} else {
			params["client_encoding"] = "UTF8"
		}
	}

	h.frontend.Send(&pgproto3.StartupMessage{
		ProtocolVersion: pgproto3.ProtocolVersionNumber,
		Parameters:      params,
	})
	h.state = stateStartupSending
	return h.pollHandshake()
}

// pollHandshake flushes any buffered outbound startup/password message, then
// reads and reacts to backend messages until ReadyForQuery or a fatal
// ErrorResponse is seen.
func (h *Handle) pollHandshake() (protocol.ConnectPollStatus, protocol.WaitEvent, error) {
	if h.state == stateStartupSending || h.state == statePasswordSending {
		if err := h.frontend.Flush(); err != nil {
			if isWouldBlock(err) {
				return protocol.ConnectPollNeedsWrite, protocol.WaitWritable, nil
			}
			return h.fail(err)
		}
		h.state = stateHandshaking
	}

	for {
		msg, err := h.frontend.Receive()
		if err != nil {
			if isWouldBlock(err) {
				return protocol.ConnectPollNeedsRead, protocol.WaitReadable, nil
			}
			return h.fail(err)
		}

		switch m := msg.(type) {
		case *pgproto3.AuthenticationOK:
			// nothing to send; keep reading for ParameterStatus/ReadyForQuery.
		case *pgproto3.AuthenticationCleartextPassword:
			h.frontend.Send(&pgproto3.PasswordMessage{Password: h.cfg.Password})
			h.state = statePasswordSending
			return h.pollHandshake()
		case *pgproto3.AuthenticationMD5Password:
			h.frontend.Send(&pgproto3.PasswordMessage{Password: md5Password(h.cfg.User, h.cfg.Password, m.Salt)})
			h.state = statePasswordSending
			return h.pollHandshake()
		case *pgproto3.ParameterStatus:
			h.params[m.Name] = m.Value
		case *pgproto3.BackendKeyData:
			// the core has no present use for the cancellation key; parsed
			// and discarded so it doesn't desync the message stream.
		case *pgproto3.ReadyForQuery:
			h.txStatus = txStatusFromByte(m.TxStatus)
			h.state = stateReady
			return protocol.ConnectPollOK, protocol.WaitNone, nil
		case *pgproto3.ErrorResponse:
			// SQLSTATE class 28 is "invalid authorization specification".
			if strings.HasPrefix(m.Code, "28") {
				return h.fail(ErrorAuthFailed.Error(errorResponseToError(m)))
			}
			return h.fail(ErrorStartupFailed.Error(errorResponseToError(m)))
		case *pgproto3.NoticeResponse:
			h.notices = append(h.notices, noticeFromResponse(m))
		default:
			return h.fail(ErrorUnsupportedAuth.Error(nil))
		}
	}
}

// SetNonblocking re-asserts non-blocking mode on the descriptor. Called once
// by connect_flow after PollConnect reports ConnectPollOK; a no-op in
// practice since the descriptor is never left in blocking mode outside of
// the bracketed TLS handshake.
func (h *Handle) SetNonblocking() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrorClosed.Error(nil)
	}
	if err := unix.SetNonblock(h.fd, true); err != nil {
		return ErrorSocket.Error(err)
	}
	return nil
}

// SendQuery queues a simple-query message. It does not write to the socket;
// Flush does.
func (h *Handle) SendQuery(sql string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrorClosed.Error(nil)
	}
	if h.state != stateReady {
		return ErrorNotConnected.Error(nil)
	}

	h.frontend.Send(&pgproto3.Query{String: sql})
	h.building = nil
	h.pending = nil
	return nil
}

func (h *Handle) Flush() (protocol.WaitEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.frontend.Flush(); err != nil {
		if isWouldBlock(err) {
			return protocol.WaitWritable, nil
		}
		return protocol.WaitNone, ErrorWrite.Error(err)
	}
	return protocol.WaitNone, nil
}

// ConsumeInput reads and reacts to exactly one backend message without
// blocking. A completed Result is only promoted to GetResult's pending slot
// once ReadyForQuery is observed, matching the simple query protocol: the
// CommandComplete/ErrorResponse that precedes it isn't the end of the
// round trip, ReadyForQuery is, and leaving it unread would desync the
// next command's read loop.
func (h *Handle) ConsumeInput() (protocol.WaitEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg, err := h.frontend.Receive()
	if err != nil {
		if isWouldBlock(err) {
			return protocol.WaitReadable, nil
		}
		return protocol.WaitNone, ErrorRead.Error(err)
	}

	switch m := msg.(type) {
	case *pgproto3.RowDescription:
		res := &protocol.Result{Status: protocol.ResultTuplesOK}
		for _, f := range m.Fields {
			res.Fields = append(res.Fields, string(f.Name))
		}
		h.building = res

	case *pgproto3.DataRow:
		if h.building == nil {
			h.building = &protocol.Result{Status: protocol.ResultTuplesOK}
		}
		row := protocol.Row{Columns: make([][]byte, len(m.Values))}
		for i, v := range m.Values {
			if v == nil {
				continue
			}
			c := make([]byte, len(v))
			copy(c, v)
			row.Columns[i] = c
		}
		h.building.Rows = append(h.building.Rows, row)

	case *pgproto3.CommandComplete:
		if h.building == nil {
			h.building = &protocol.Result{Status: protocol.ResultCommandOK}
		}
		h.building.Command = string(m.CommandTag)

	case *pgproto3.EmptyQueryResponse:
		h.building = &protocol.Result{Status: protocol.ResultEmptyQuery}

	case *pgproto3.CopyInResponse:
		h.building = &protocol.Result{Status: protocol.ResultCopyIn}

	case *pgproto3.CopyOutResponse:
		h.building = &protocol.Result{Status: protocol.ResultCopyOut}

	case *pgproto3.CopyBothResponse:
		h.building = &protocol.Result{Status: protocol.ResultCopyBoth}

	case *pgproto3.ErrorResponse:
		h.lastErr = errorResponseToError(m)
		h.building = &protocol.Result{Status: protocol.ResultFatalError}

	case *pgproto3.NoticeResponse:
		h.notices = append(h.notices, noticeFromResponse(m))

	case *pgproto3.NotificationResponse:
		h.notifies = append(h.notifies, protocol.Notify{Channel: m.Channel, Payload: m.Payload, PID: m.PID})

	case *pgproto3.ParameterStatus:
		h.params[m.Name] = m.Value

	case *pgproto3.ReadyForQuery:
		h.txStatus = txStatusFromByte(m.TxStatus)
		if h.building != nil {
			h.pending = h.building
			h.building = nil
		}
	}

	return protocol.WaitNone, nil
}

func (h *Handle) IsBusy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending == nil
}

func (h *Handle) GetResult() (*protocol.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.pending
	h.pending = nil
	return r, nil
}

func (h *Handle) TxStatus() protocol.TxStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txStatus
}

func (h *Handle) ParameterStatus(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.params[name]
	return v, ok
}

// Escape quotes a literal for inclusion in a composed SQL command, doubling
// any embedded single quotes.
func (h *Handle) Escape(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}

func (h *Handle) Fd() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fd
}

func (h *Handle) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *Handle) DrainNotices() []protocol.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.notices
	h.notices = nil
	return n
}

func (h *Handle) DrainNotifications() []protocol.Notify {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.notifies
	h.notifies = nil
	return n
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	var err error
	if h.fd >= 0 {
		err = unix.Close(h.fd)
	}
	if err != nil && h.log != nil {
		if l := h.log(); l != nil {
			l.Error("pgwire: closing connection descriptor failed", err)
		}
	}
	return nil
}
