package wire

import (
	"encoding/binary"
	"fmt"
)

// Decode parses one backend message from the front of data. It returns the
// message and the number of bytes consumed, or ErrNeedMoreData when data
// holds only a partial frame. All variable-length contents (names, row
// values) are copied out of data, so the caller may compact its receive
// buffer once Decode returns.
func Decode(data []byte) (BackendMsg, int, error) {
	if len(data) < 5 {
		return nil, 0, ErrNeedMoreData
	}
	typ := data[0]
	length := binary.BigEndian.Uint32(data[1:5])
	if length < 4 {
		return nil, 0, fmt.Errorf("%w: message %q length %d below minimum", ErrProtocol, typ, length)
	}
	total := 1 + int(length)
	if len(data) < total {
		return nil, 0, ErrNeedMoreData
	}

	msg, err := decodeBody(typ, data[5:total])
	if err != nil {
		return nil, 0, err
	}
	return msg, total, nil
}

func decodeBody(typ byte, body []byte) (BackendMsg, error) {
	r := bodyReader{buf: body}

	switch typ {
	case 'R':
		return decodeAuth(&r)

	case 'S':
		name := r.cstring()
		value := r.cstring()
		if r.failed {
			return nil, truncated(typ)
		}
		return ParameterStatus{Name: name, Value: value}, nil

	case 'K':
		pid := r.uint32()
		secret := r.uint32()
		if r.failed {
			return nil, truncated(typ)
		}
		return BackendKeyData{PID: pid, Secret: secret}, nil

	case 'Z':
		status := r.byte()
		if r.failed {
			return nil, truncated(typ)
		}
		return ReadyForQuery{Status: status}, nil

	case '1':
		return ParseComplete{}, nil
	case '2':
		return BindComplete{}, nil
	case '3':
		return CloseComplete{}, nil
	case 'n':
		return NoData{}, nil
	case 'I':
		return EmptyQueryResponse{}, nil

	case 't':
		count := r.uint16()
		oids := make([]uint32, 0, count)
		for i := 0; i < int(count); i++ {
			oids = append(oids, r.uint32())
		}
		if r.failed {
			return nil, truncated(typ)
		}
		return ParameterDescription{OIDs: oids}, nil

	case 'T':
		count := r.uint16()
		fields := make([]RowField, 0, count)
		for i := 0; i < int(count); i++ {
			fields = append(fields, RowField{
				Name:       r.cstring(),
				TableOID:   r.uint32(),
				ColumnAttr: r.uint16(),
				TypeOID:    r.uint32(),
				TypeLen:    r.int16(),
				TypeMod:    r.int32(),
				Format:     r.int16(),
			})
		}
		if r.failed {
			return nil, truncated(typ)
		}
		return RowDescription{Fields: fields}, nil

	case 'D':
		count := r.uint16()
		values := make([][]byte, 0, count)
		for i := 0; i < int(count); i++ {
			n := r.int32()
			if n < 0 {
				values = append(values, nil)
				continue
			}
			raw := r.take(int(n))
			values = append(values, append([]byte(nil), raw...))
		}
		if r.failed {
			return nil, truncated(typ)
		}
		return DataRow{Values: values}, nil

	case 'C':
		tag := r.cstring()
		if r.failed {
			return nil, truncated(typ)
		}
		return CommandComplete{Tag: tag}, nil

	case 'E':
		fields, err := decodeFieldMap(&r, typ)
		if err != nil {
			return nil, err
		}
		return ErrorResponse{Fields: fields}, nil

	case 'N':
		fields, err := decodeFieldMap(&r, typ)
		if err != nil {
			return nil, err
		}
		return NoticeResponse{Fields: fields}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, typ)
	}
}

func decodeAuth(r *bodyReader) (BackendMsg, error) {
	code := r.int32()
	if r.failed {
		return nil, truncated('R')
	}

	switch code {
	case 0:
		return AuthOK{}, nil
	case 3:
		return AuthCleartext{}, nil
	case 5:
		var m AuthMD5
		copy(m.Salt[:], r.take(4))
		if r.failed {
			return nil, truncated('R')
		}
		return m, nil
	case 10:
		var mechs []string
		for {
			s := r.cstring()
			if r.failed {
				return nil, truncated('R')
			}
			if s == "" {
				break
			}
			mechs = append(mechs, s)
		}
		return AuthSASL{Mechanisms: mechs}, nil
	case 11:
		return AuthSASLContinue{Data: append([]byte(nil), r.rest()...)}, nil
	case 12:
		return AuthSASLFinal{Data: append([]byte(nil), r.rest()...)}, nil
	default:
		return AuthUnknown{Code: code}, nil
	}
}

func decodeFieldMap(r *bodyReader, typ byte) (map[byte]string, error) {
	fields := make(map[byte]string)
	for {
		code := r.byte()
		if r.failed {
			return nil, truncated(typ)
		}
		if code == 0 {
			return fields, nil
		}
		fields[code] = r.cstring()
		if r.failed {
			return nil, truncated(typ)
		}
	}
}

func truncated(typ byte) error {
	return fmt.Errorf("%w: truncated %q message body", ErrProtocol, typ)
}

// bodyReader walks a message body. Any read past the end sets failed; callers
// check it once after the reads they batch.
type bodyReader struct {
	buf    []byte
	pos    int
	failed bool
}

func (r *bodyReader) byte() byte {
	if r.pos+1 > len(r.buf) {
		r.failed = true
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *bodyReader) uint16() uint16 {
	if r.pos+2 > len(r.buf) {
		r.failed = true
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *bodyReader) int16() int16 {
	return int16(r.uint16())
}

func (r *bodyReader) uint32() uint32 {
	if r.pos+4 > len(r.buf) {
		r.failed = true
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *bodyReader) int32() int32 {
	return int32(r.uint32())
}

// cstring returns the NUL-terminated string at the cursor. The returned
// string is a copy; Go string conversion never aliases the input buffer.
func (r *bodyReader) cstring() string {
	for i := r.pos; i < len(r.buf); i++ {
		if r.buf[i] == 0 {
			s := string(r.buf[r.pos:i])
			r.pos = i + 1
			return s
		}
	}
	r.failed = true
	return ""
}

func (r *bodyReader) take(n int) []byte {
	if n < 0 || r.pos+n > len(r.buf) {
		r.failed = true
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *bodyReader) rest() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}
