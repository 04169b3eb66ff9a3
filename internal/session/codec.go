package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"altcad-web/internal/domain"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrSealedRecord is returned when a stored record cannot be opened or
// decoded. Callers treat it as "no session" and discard the record.
var ErrSealedRecord = errors.New("cannot open sealed session record")

// Codec seals the JSON-serialized session record with NaCl secretbox so the
// browser holds an opaque value. The key is derived from the configured
// session secret.
type Codec struct {
	key [32]byte
}

// NewCodec derives a sealing key from the session secret.
func NewCodec(secret string) *Codec {
	return &Codec{key: sha256.Sum256([]byte(secret))}
}

// Seal serializes and encrypts a session record into a cookie-safe string.
func (c *Codec) Seal(session *domain.Session) (string, error) {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts and deserializes a stored record. Any tampering, truncation
// or decode failure yields ErrSealedRecord.
func (c *Codec) Open(value string) (*domain.Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) <= nonceSize {
		return nil, ErrSealedRecord
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok {
		return nil, ErrSealedRecord
	}

	session := &domain.Session{}
	if err := json.Unmarshal(plaintext, session); err != nil {
		return nil, ErrSealedRecord
	}
	return session, nil
}
