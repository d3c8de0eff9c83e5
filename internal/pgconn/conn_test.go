package pgconn_test

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/pgbind/pgbind/internal/pgconn"
	"github.com/pgbind/pgbind/internal/pgtest"
	"github.com/pgbind/pgbind/internal/wire"
)

func startServer(t *testing.T, auth pgtest.AuthMode, user, password string) *pgtest.Server {
	t.Helper()
	srv, err := pgtest.NewServer()
	if err != nil {
		t.Fatalf("failed to start scripted server: %v", err)
	}
	srv.Auth = auth
	srv.User = user
	srv.Password = password
	t.Cleanup(srv.Close)
	return srv
}

func connect(t *testing.T, srv *pgtest.Server, user, password string) *pgconn.Conn {
	t.Helper()
	conn, err := pgconn.Connect(pgconn.Config{
		Host:     "127.0.0.1",
		Port:     srv.Port(),
		User:     user,
		Password: password,
		Database: "testdb",
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConnect_Trust(t *testing.T) {
	srv := startServer(t, pgtest.AuthTrust, "alice", "")
	conn := connect(t, srv, "alice", "")

	srv.OnQuery("SELECT 1", pgtest.QueryResult{Rows: [][]string{{"1"}}})
	msgs, err := conn.Query("SELECT 1")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	var sawRow bool
	for _, m := range msgs {
		if row, ok := m.(wire.DataRow); ok {
			sawRow = true
			if string(row.Values[0]) != "1" {
				t.Errorf("row value = %q, want %q", row.Values[0], "1")
			}
		}
	}
	if !sawRow {
		t.Error("no DataRow in query response")
	}
	if _, ok := msgs[len(msgs)-1].(wire.ReadyForQuery); !ok {
		t.Errorf("last message = %T, want ReadyForQuery", msgs[len(msgs)-1])
	}
}

func TestConnect_Cleartext(t *testing.T) {
	srv := startServer(t, pgtest.AuthCleartext, "alice", "hunter2")
	connect(t, srv, "alice", "hunter2")
}

func TestConnect_CleartextWrongPassword(t *testing.T) {
	srv := startServer(t, pgtest.AuthCleartext, "alice", "hunter2")

	_, err := pgconn.Connect(pgconn.Config{
		Host:     "127.0.0.1",
		Port:     srv.Port(),
		User:     "alice",
		Password: "wrong",
		Database: "testdb",
	})
	if !errors.Is(err, pgconn.ErrAuthenticationFailed) {
		t.Errorf("Connect() error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestConnect_MD5(t *testing.T) {
	srv := startServer(t, pgtest.AuthMD5, "alice", "hunter2")
	connect(t, srv, "alice", "hunter2")
}

func TestConnect_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	_ = ln.Close()

	_, err = pgconn.Connect(pgconn.Config{Host: "127.0.0.1", Port: port, User: "alice"})
	if err == nil {
		t.Fatal("Connect() to closed port succeeded")
	}
}

func TestDescribeStatement(t *testing.T) {
	srv := startServer(t, pgtest.AuthTrust, "alice", "")
	conn := connect(t, srv, "alice", "")

	sql := "SELECT id, name FROM users WHERE id = $1"
	srv.OnDescribe(sql, pgtest.DescribeResult{
		ParamOIDs: []uint32{23},
		Fields: []pgtest.Field{
			{Name: "id", TableOID: 16384, ColumnAttr: 1, TypeOID: 23},
			{Name: "name", TableOID: 16384, ColumnAttr: 2, TypeOID: 25},
		},
	})

	msgs, err := conn.DescribeStatement(sql)
	if err != nil {
		t.Fatalf("DescribeStatement() error = %v", err)
	}

	var params *wire.ParameterDescription
	var rowDesc *wire.RowDescription
	for _, m := range msgs {
		switch m := m.(type) {
		case wire.ParameterDescription:
			params = &m
		case wire.RowDescription:
			rowDesc = &m
		}
	}

	if params == nil || len(params.OIDs) != 1 || params.OIDs[0] != 23 {
		t.Errorf("parameter description = %+v, want one oid 23", params)
	}
	if rowDesc == nil || len(rowDesc.Fields) != 2 {
		t.Fatalf("row description = %+v, want 2 fields", rowDesc)
	}
	if rowDesc.Fields[0].Name != "id" || rowDesc.Fields[1].Name != "name" {
		t.Errorf("field names = %q, %q", rowDesc.Fields[0].Name, rowDesc.Fields[1].Name)
	}
	if rowDesc.Fields[0].TableOID != 16384 || rowDesc.Fields[0].ColumnAttr != 1 {
		t.Errorf("field origin = (%d, %d), want (16384, 1)", rowDesc.Fields[0].TableOID, rowDesc.Fields[0].ColumnAttr)
	}
}

func TestDescribeStatement_NoData(t *testing.T) {
	srv := startServer(t, pgtest.AuthTrust, "alice", "")
	conn := connect(t, srv, "alice", "")

	sql := "DELETE FROM sessions WHERE expires_at < now()"
	srv.OnDescribe(sql, pgtest.DescribeResult{NoData: true})

	msgs, err := conn.DescribeStatement(sql)
	if err != nil {
		t.Fatalf("DescribeStatement() error = %v", err)
	}

	var sawNoData bool
	for _, m := range msgs {
		if _, ok := m.(wire.NoData); ok {
			sawNoData = true
		}
	}
	if !sawNoData {
		t.Error("no NoData message in response")
	}
}

func TestRecv_MessageLargerThanBuffer(t *testing.T) {
	srv := startServer(t, pgtest.AuthTrust, "alice", "")
	conn := connect(t, srv, "alice", "")

	srv.OnQuery("SELECT big", pgtest.QueryResult{
		Rows: [][]string{{strings.Repeat("x", 20_000)}},
	})

	_, err := conn.Query("SELECT big")
	if !errors.Is(err, wire.ErrProtocol) {
		t.Errorf("Query() error = %v, want ErrProtocol", err)
	}
}

// TestConnect_SplitFrames drives the framing loop with a backend that
// dribbles its handshake a few bytes per write, forcing reads mid-message.
func TestConnect_SplitFrames(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()

		r := bufio.NewReader(c)
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return
		}
		startupLen := binary.BigEndian.Uint32(lenBuf[:])
		if _, err := io.CopyN(io.Discard, r, int64(startupLen-4)); err != nil {
			return
		}

		var resp []byte
		resp = append(resp, 'R', 0, 0, 0, 8, 0, 0, 0, 0)
		resp = append(resp, 'S', 0, 0, 0, 24)
		resp = append(resp, "server_version\x0016.3\x00"...)
		resp = append(resp, 'K', 0, 0, 0, 12, 0, 0, 0, 1, 0, 0, 0, 2)
		resp = append(resp, 'Z', 0, 0, 0, 5, 'I')

		for i := 0; i < len(resp); i += 3 {
			end := i + 3
			if end > len(resp) {
				end = len(resp)
			}
			if _, err := c.Write(resp[i:end]); err != nil {
				return
			}
		}

		// Hold the stream open until the client terminates.
		_, _ = io.Copy(io.Discard, r)
	}()

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	conn, err := pgconn.Connect(pgconn.Config{Host: "127.0.0.1", Port: port, User: "alice", Database: "db"})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	_ = conn.Close()
}
