package ticket

import (
    "crypto/sha256"
    "errors"
    "io"

    "golang.org/x/crypto/hkdf"
)

// ErrNoSigningKey is returned when no ticket signing secret is configured.
var ErrNoSigningKey = errors.New("ticket signing key not configured")

// KeyProvider supplies the symmetric key used to sign and verify ticket
// tokens.  Implementations may rotate keys between calls.
type KeyProvider interface {
    SigningKey() ([]byte, error)
}

// hkdfInfo separates ticket keys from any other key derived from the same
// secret.
const hkdfInfo = "auditorium/ticket-token/v1"

// SecretKeyProvider derives a 32 byte HMAC key from a shared secret with
// HKDF-SHA256.  An empty secret yields ErrNoSigningKey.
type SecretKeyProvider struct {
    key []byte
    err error
}

// NewSecretKeyProvider derives the key once.  Derivation errors are kept
// and reported by SigningKey so construction never fails.
func NewSecretKeyProvider(secret string) *SecretKeyProvider {
    if secret == "" {
        return &SecretKeyProvider{err: ErrNoSigningKey}
    }
    key := make([]byte, 32)
    if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
        return &SecretKeyProvider{err: err}
    }
    return &SecretKeyProvider{key: key}
}

func (p *SecretKeyProvider) SigningKey() ([]byte, error) {
    if p.err != nil {
        return nil, p.err
    }
    return p.key, nil
}
