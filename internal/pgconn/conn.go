// Package pgconn is a minimal synchronous PostgreSQL client: enough of the
// frontend/backend protocol to start a session, authenticate, and run the
// Parse/Describe/Sync exchange plus simple queries against the catalog.
package pgconn

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/pgbind/pgbind/internal/wire"
)

const recvBufSize = 16 * 1024

var (
	// ErrConnectionClosed reports that the server closed the stream.
	ErrConnectionClosed = errors.New("pgconn: connection closed")

	// ErrUnsupportedAuthMethod reports an authentication subtype this client
	// does not implement (GSS, SSPI, ...).
	ErrUnsupportedAuthMethod = errors.New("pgconn: unsupported authentication method")

	// ErrAuthenticationFailed reports a rejected handshake, including a SCRAM
	// server-signature mismatch.
	ErrAuthenticationFailed = errors.New("pgconn: authentication failed")
)

// Config identifies the session endpoint. The CLI builds it from the parsed
// database URL.
type Config struct {
	Host     string
	Port     uint16
	User     string
	Password string
	Database string
}

// Conn owns one TCP stream, a fixed receive window with (start, end)
// cursors, and a send buffer reused across encodings. It is bound to a
// single caller; there is no internal concurrency.
type Conn struct {
	c     net.Conn
	rbuf  []byte
	start int
	end   int
	wbuf  []byte
}

// Connect dials the server, sends Startup, and consumes backend messages
// until ReadyForQuery, dispatching authentication along the way.
func Connect(cfg Config) (*Conn, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	conn := &Conn{c: nc, rbuf: make([]byte, recvBufSize)}
	if err := conn.startup(cfg); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) startup(cfg Config) error {
	if err := c.send(wire.EncodeStartup(c.wbuf, cfg.User, cfg.Database)); err != nil {
		return err
	}

	for {
		msg, err := c.recvMsg()
		if err != nil {
			return err
		}

		switch m := msg.(type) {
		case wire.AuthOK, wire.AuthCleartext, wire.AuthMD5, wire.AuthSASL, wire.AuthUnknown:
			if err := c.authenticate(cfg, m); err != nil {
				return err
			}
		case wire.ParameterStatus, wire.BackendKeyData, wire.NoticeResponse:
			// Session chatter after a successful handshake; nothing to keep.
		case wire.ReadyForQuery:
			return nil
		case wire.ErrorResponse:
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, m.Fields['M'])
		default:
			return fmt.Errorf("%w: unexpected %T during startup", wire.ErrProtocol, m)
		}
	}
}

// DescribeStatement runs the introspection exchange for one statement:
// Parse with the unnamed statement, Describe('S'), Sync, then every backend
// message up to and including ReadyForQuery.
func (c *Conn) DescribeStatement(sql string) ([]wire.BackendMsg, error) {
	if err := c.send(wire.EncodeParse(c.wbuf, "", sql)); err != nil {
		return nil, err
	}
	if err := c.send(wire.EncodeDescribe(c.wbuf, 'S', "")); err != nil {
		return nil, err
	}
	if err := c.send(wire.EncodeSync(c.wbuf)); err != nil {
		return nil, err
	}
	return c.RecvUntilReady()
}

// Query runs a simple-protocol query and collects the response messages up
// to and including ReadyForQuery. Used for catalog lookups only.
func (c *Conn) Query(sql string) ([]wire.BackendMsg, error) {
	if err := c.send(wire.EncodeQuery(c.wbuf, sql)); err != nil {
		return nil, err
	}
	return c.RecvUntilReady()
}

// RecvUntilReady accumulates messages until the next ReadyForQuery, which is
// included as the final element.
func (c *Conn) RecvUntilReady() ([]wire.BackendMsg, error) {
	var msgs []wire.BackendMsg
	for {
		msg, err := c.recvMsg()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
		if _, ok := msg.(wire.ReadyForQuery); ok {
			return msgs, nil
		}
	}
}

// Close sends Terminate and closes the stream.
func (c *Conn) Close() error {
	_ = c.send(wire.EncodeTerminate(c.wbuf))
	return c.c.Close()
}

func (c *Conn) send(frame []byte) error {
	c.wbuf = frame
	if _, err := c.c.Write(frame); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// recvMsg is the only framing loop. It feeds the pure decoder from the
// receive window, compacting and reading more bytes on ErrNeedMoreData.
func (c *Conn) recvMsg() (wire.BackendMsg, error) {
	for {
		msg, consumed, err := wire.Decode(c.rbuf[c.start:c.end])
		if err == nil {
			c.start += consumed
			if c.start > len(c.rbuf)/2 {
				c.compact()
			}
			return msg, nil
		}
		if !errors.Is(err, wire.ErrNeedMoreData) {
			return nil, err
		}

		if c.end == len(c.rbuf) {
			if c.start == 0 {
				return nil, fmt.Errorf("%w: message exceeds %d-byte receive buffer", wire.ErrProtocol, recvBufSize)
			}
			c.compact()
		}

		n, err := c.c.Read(c.rbuf[c.end:])
		if n > 0 {
			c.end += n
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, fmt.Errorf("failed to read from connection: %w", err)
		}
	}
}

func (c *Conn) compact() {
	copy(c.rbuf, c.rbuf[c.start:c.end])
	c.end -= c.start
	c.start = 0
}
