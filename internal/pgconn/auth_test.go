package pgconn

import (
	"strings"
	"testing"
)

func TestMD5Password(t *testing.T) {
	salt := [4]byte{0x01, 0x02, 0x03, 0x04}
	digest := md5Password("alice", "secret", salt)

	if !strings.HasPrefix(digest, "md5") {
		t.Errorf("digest %q does not start with md5", digest)
	}
	if len(digest) != 3+32 {
		t.Errorf("digest length = %d, want 35", len(digest))
	}
	for _, c := range digest[3:] {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("digest contains non-hex character %q", c)
		}
	}

	if digest != md5Password("alice", "secret", salt) {
		t.Error("digest is not deterministic")
	}
	if digest == md5Password("alice", "secret", [4]byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Error("digest does not depend on the salt")
	}
	if digest == md5Password("bob", "secret", salt) {
		t.Error("digest does not depend on the user")
	}
}
