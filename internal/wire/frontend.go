package wire

import "encoding/binary"

// Every encoder clears the caller's buffer, writes exactly one framed
// message, and returns the (possibly reallocated) buffer. The caller reuses
// the returned slice for the next encoding.

// EncodeStartup writes the StartupMessage: no type byte, i32 length,
// protocol version, then NUL-terminated key/value pairs and a final NUL.
func EncodeStartup(buf []byte, user, database string) []byte {
	buf = buf[:0]
	buf = append(buf, 0, 0, 0, 0)
	buf = binary.BigEndian.AppendUint32(buf, ProtocolVersion)
	buf = appendCString(buf, "user")
	buf = appendCString(buf, user)
	buf = appendCString(buf, "database")
	buf = appendCString(buf, database)
	buf = append(buf, 0)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

// EncodePassword writes a PasswordMessage ('p'). The payload is either the
// cleartext password or the md5-digested form, NUL-terminated.
func EncodePassword(buf []byte, password string) []byte {
	buf, n := beginMsg(buf, 'p')
	buf = appendCString(buf, password)
	return endMsg(buf, n)
}

// EncodeSASLInitialResponse writes the first SASL message: mechanism name,
// then the client-first payload preceded by its i32 length.
func EncodeSASLInitialResponse(buf []byte, mechanism string, clientFirst []byte) []byte {
	buf, n := beginMsg(buf, 'p')
	buf = appendCString(buf, mechanism)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(clientFirst)))
	buf = append(buf, clientFirst...)
	return endMsg(buf, n)
}

// EncodeSASLResponse writes a continuation SASL message: raw bytes only.
func EncodeSASLResponse(buf []byte, data []byte) []byte {
	buf, n := beginMsg(buf, 'p')
	buf = append(buf, data...)
	return endMsg(buf, n)
}

// EncodeParse writes a Parse ('P') with zero declared parameter types, so the
// server infers every $N type itself.
func EncodeParse(buf []byte, name, sql string) []byte {
	buf, n := beginMsg(buf, 'P')
	buf = appendCString(buf, name)
	buf = appendCString(buf, sql)
	buf = append(buf, 0, 0)
	return endMsg(buf, n)
}

// EncodeDescribe writes a Describe ('D') for target 'S' (prepared statement)
// or 'P' (portal).
func EncodeDescribe(buf []byte, target byte, name string) []byte {
	buf, n := beginMsg(buf, 'D')
	buf = append(buf, target)
	buf = appendCString(buf, name)
	return endMsg(buf, n)
}

// EncodeClose writes a Close ('C') for target 'S' or 'P'.
func EncodeClose(buf []byte, target byte, name string) []byte {
	buf, n := beginMsg(buf, 'C')
	buf = append(buf, target)
	buf = appendCString(buf, name)
	return endMsg(buf, n)
}

// EncodeSync writes a Sync ('S').
func EncodeSync(buf []byte) []byte {
	buf, n := beginMsg(buf, 'S')
	return endMsg(buf, n)
}

// EncodeTerminate writes a Terminate ('X').
func EncodeTerminate(buf []byte) []byte {
	buf, n := beginMsg(buf, 'X')
	return endMsg(buf, n)
}

// EncodeQuery writes a simple Query ('Q').
func EncodeQuery(buf []byte, sql string) []byte {
	buf, n := beginMsg(buf, 'Q')
	buf = appendCString(buf, sql)
	return endMsg(buf, n)
}

func beginMsg(buf []byte, typ byte) ([]byte, int) {
	buf = buf[:0]
	buf = append(buf, typ, 0, 0, 0, 0)
	return buf, 1
}

func endMsg(buf []byte, lenPos int) []byte {
	binary.BigEndian.PutUint32(buf[lenPos:lenPos+4], uint32(len(buf)-lenPos))
	return buf
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}
