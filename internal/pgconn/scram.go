package pgconn

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/pgbind/pgbind/internal/wire"
)

const scramMechanism = "SCRAM-SHA-256"

// scramClient carries the state the RFC 5802 exchange threads between steps:
// the client nonce, the client-first-bare string, and the server-first
// message exactly as received, all three feeding the AuthMessage.
type scramClient struct {
	user     string
	password string

	clientNonce     string
	clientFirstBare string
	serverFirst     string
	saltedPassword  []byte
	authMessage     string
}

// scramAuth drives the SCRAM-SHA-256 dialog: SASLInitialResponse, server
// challenge, SASLResponse with the client proof, then verification of the
// server signature. The caller's startup loop consumes the AuthOK that
// follows a verified final message.
func (c *Conn) scramAuth(cfg Config, mechanisms []string) error {
	supported := false
	for _, m := range mechanisms {
		if m == scramMechanism {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: server offered %v", ErrUnsupportedAuthMethod, mechanisms)
	}

	sc, err := newScramClient(cfg.User, cfg.Password)
	if err != nil {
		return err
	}

	first := sc.clientFirst()
	if err := c.send(wire.EncodeSASLInitialResponse(c.wbuf, scramMechanism, []byte(first))); err != nil {
		return err
	}

	msg, err := c.recvMsg()
	if err != nil {
		return err
	}
	cont, ok := msg.(wire.AuthSASLContinue)
	if !ok {
		if e, isErr := msg.(wire.ErrorResponse); isErr {
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, e.Fields['M'])
		}
		return fmt.Errorf("%w: expected SASL continue, got %T", wire.ErrProtocol, msg)
	}

	final, err := sc.clientFinal(cont.Data)
	if err != nil {
		return err
	}
	if err := c.send(wire.EncodeSASLResponse(c.wbuf, []byte(final))); err != nil {
		return err
	}

	msg, err = c.recvMsg()
	if err != nil {
		return err
	}
	fin, ok := msg.(wire.AuthSASLFinal)
	if !ok {
		if e, isErr := msg.(wire.ErrorResponse); isErr {
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, e.Fields['M'])
		}
		return fmt.Errorf("%w: expected SASL final, got %T", wire.ErrProtocol, msg)
	}

	return sc.verifyServerFinal(fin.Data)
}

func newScramClient(user, password string) (*scramClient, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate client nonce: %w", err)
	}
	return &scramClient{
		user:        user,
		password:    password,
		clientNonce: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

func (s *scramClient) clientFirst() string {
	s.clientFirstBare = "n=" + s.user + ",r=" + s.clientNonce
	return "n,," + s.clientFirstBare
}

// clientFinal processes the server-first message and produces the
// client-final message carrying the proof.
func (s *scramClient) clientFinal(serverFirst []byte) (string, error) {
	s.serverFirst = string(serverFirst)

	attrs := parseScramAttrs(s.serverFirst)
	combinedNonce := attrs["r"]
	if !strings.HasPrefix(combinedNonce, s.clientNonce) {
		return "", fmt.Errorf("%w: server nonce does not extend client nonce", ErrAuthenticationFailed)
	}
	salt, err := base64.StdEncoding.DecodeString(attrs["s"])
	if err != nil {
		return "", fmt.Errorf("%w: bad salt encoding", ErrAuthenticationFailed)
	}
	iterations, err := strconv.Atoi(attrs["i"])
	if err != nil || iterations < 1 {
		return "", fmt.Errorf("%w: bad iteration count %q", ErrAuthenticationFailed, attrs["i"])
	}

	s.saltedPassword = pbkdf2.Key([]byte(s.password), salt, iterations, sha256.Size, sha256.New)

	clientKey := hmacSHA256(s.saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)

	withoutProof := "c=biws,r=" + combinedNonce
	s.authMessage = s.clientFirstBare + "," + s.serverFirst + "," + withoutProof

	clientSignature := hmacSHA256(storedKey[:], []byte(s.authMessage))
	proof := make([]byte, len(clientKey))
	for i := range clientKey {
		proof[i] = clientKey[i] ^ clientSignature[i]
	}

	return withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof), nil
}

// verifyServerFinal checks the server signature, proving the server also
// knows the salted password.
func (s *scramClient) verifyServerFinal(serverFinal []byte) error {
	attrs := parseScramAttrs(string(serverFinal))
	if e, ok := attrs["e"]; ok {
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, e)
	}
	verifier, err := base64.StdEncoding.DecodeString(attrs["v"])
	if err != nil {
		return fmt.Errorf("%w: bad server signature encoding", ErrAuthenticationFailed)
	}

	serverKey := hmacSHA256(s.saltedPassword, []byte("Server Key"))
	expected := hmacSHA256(serverKey, []byte(s.authMessage))
	if !bytes.Equal(verifier, expected) {
		return fmt.Errorf("%w: server signature mismatch", ErrAuthenticationFailed)
	}
	return nil
}

func parseScramAttrs(msg string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(msg, ",") {
		if len(part) >= 2 && part[1] == '=' {
			attrs[part[:1]] = part[2:]
		}
	}
	return attrs
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
