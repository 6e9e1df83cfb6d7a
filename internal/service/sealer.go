package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrSealedTokenInvalid is returned when a sealed token cannot be opened.
var ErrSealedTokenInvalid = errors.New("sealed token invalid")

// Sealer encrypts backend bearer tokens at rest with NaCl secretbox.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the secretbox key from secret. A 64-character hex secret
// is decoded as the key itself; anything else of at least 32 bytes is
// hashed down to a key.
func NewSealer(secret string) (*Sealer, error) {
	var s Sealer
	if raw, err := hex.DecodeString(secret); err == nil && len(raw) == 32 {
		copy(s.key[:], raw)
		return &s, nil
	}
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	s.key = sha256.Sum256([]byte(secret))
	return &s, nil
}

// Seal returns nonce || secretbox(plain).
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrSealedTokenInvalid
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealedTokenInvalid
	}
	return plain, nil
}
