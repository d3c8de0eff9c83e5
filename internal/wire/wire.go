// Package wire implements the byte-level encoding of PostgreSQL frontend
// messages and decoding of backend messages (protocol 3.0). It performs no
// I/O: the encoder writes one framed message into a caller-owned buffer, and
// the decoder consumes a prefix of a caller-owned slice.
package wire

import "errors"

// ProtocolVersion is the v3.0 protocol number carried in StartupMessage.
const ProtocolVersion = 196608

var (
	// ErrNeedMoreData reports that the input slice holds only a prefix of a
	// message. The framing loop reads more bytes and retries; it is never
	// surfaced to callers of the connection.
	ErrNeedMoreData = errors.New("wire: need more data")

	// ErrProtocol reports a malformed frame.
	ErrProtocol = errors.New("wire: protocol error")

	// ErrUnknownMessage reports a backend type byte this client does not speak.
	ErrUnknownMessage = errors.New("wire: unknown message type")
)

// BackendMsg is implemented by every backend message this client interprets.
type BackendMsg interface {
	backend()
}

type AuthOK struct{}

type AuthCleartext struct{}

type AuthMD5 struct {
	Salt [4]byte
}

type AuthSASL struct {
	Mechanisms []string
}

type AuthSASLContinue struct {
	Data []byte
}

type AuthSASLFinal struct {
	Data []byte
}

// AuthUnknown carries an authentication subtype this client does not
// implement; the connection layer turns it into UnsupportedAuthMethod.
type AuthUnknown struct {
	Code int32
}

type ParameterStatus struct {
	Name  string
	Value string
}

type BackendKeyData struct {
	PID    uint32
	Secret uint32
}

type ReadyForQuery struct {
	Status byte
}

type ParseComplete struct{}

type BindComplete struct{}

type CloseComplete struct{}

type NoData struct{}

type ParameterDescription struct {
	OIDs []uint32
}

// RowField is one entry of a RowDescription, exactly as the server reports it.
type RowField struct {
	Name       string
	TableOID   uint32
	ColumnAttr uint16
	TypeOID    uint32
	TypeLen    int16
	TypeMod    int32
	Format     int16
}

type RowDescription struct {
	Fields []RowField
}

// DataRow holds one result row; a nil element is a SQL NULL.
type DataRow struct {
	Values [][]byte
}

type CommandComplete struct {
	Tag string
}

// ErrorResponse and NoticeResponse carry the server's field map keyed by the
// single-byte field code ('S' severity, 'C' sqlstate, 'M' message, ...).
type ErrorResponse struct {
	Fields map[byte]string
}

type NoticeResponse struct {
	Fields map[byte]string
}

type EmptyQueryResponse struct{}

func (AuthOK) backend()               {}
func (AuthCleartext) backend()        {}
func (AuthMD5) backend()              {}
func (AuthSASL) backend()             {}
func (AuthSASLContinue) backend()     {}
func (AuthSASLFinal) backend()        {}
func (AuthUnknown) backend()          {}
func (ParameterStatus) backend()      {}
func (BackendKeyData) backend()       {}
func (ReadyForQuery) backend()        {}
func (ParseComplete) backend()        {}
func (BindComplete) backend()         {}
func (CloseComplete) backend()        {}
func (NoData) backend()               {}
func (ParameterDescription) backend() {}
func (RowDescription) backend()       {}
func (DataRow) backend()              {}
func (CommandComplete) backend()      {}
func (ErrorResponse) backend()        {}
func (NoticeResponse) backend()       {}
func (EmptyQueryResponse) backend()   {}
