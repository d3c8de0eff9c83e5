package pgconn

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/pgbind/pgbind/internal/wire"
)

// authenticate handles one authentication request from the server. Cleartext
// and MD5 send a single PasswordMessage and leave the startup loop to consume
// the following AuthOK; SASL runs the full SCRAM dialog before returning.
func (c *Conn) authenticate(cfg Config, msg wire.BackendMsg) error {
	switch m := msg.(type) {
	case wire.AuthOK:
		return nil

	case wire.AuthCleartext:
		return c.send(wire.EncodePassword(c.wbuf, cfg.Password))

	case wire.AuthMD5:
		return c.send(wire.EncodePassword(c.wbuf, md5Password(cfg.User, cfg.Password, m.Salt)))

	case wire.AuthSASL:
		return c.scramAuth(cfg, m.Mechanisms)

	case wire.AuthUnknown:
		return fmt.Errorf("%w: auth code %d", ErrUnsupportedAuthMethod, m.Code)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedAuthMethod, msg)
	}
}

// md5Password computes "md5" || hex(md5(hex(md5(password || user)) || salt)).
func md5Password(user, password string, salt [4]byte) string {
	inner := md5.Sum([]byte(password + user))
	innerHex := hex.EncodeToString(inner[:])

	outer := md5.New()
	outer.Write([]byte(innerHex))
	outer.Write(salt[:])
	return "md5" + hex.EncodeToString(outer.Sum(nil))
}
