package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes        = 16
	pbkdf2Iterations = 10000
	pbkdf2KeyLen     = 64
)

// PasswordHasher salts, hashes and verifies user passwords.
type PasswordHasher interface {
	NewSalt() (string, error)
	Hash(password, salt string) string
	Verify(password, salt, digest string) bool
}

// PBKDF2Hasher derives hex digests with PBKDF2-SHA512.
type PBKDF2Hasher struct {
	Iterations int
	KeyLen     int
}

var _ PasswordHasher = (*PBKDF2Hasher)(nil)

// NewPBKDF2Hasher returns a hasher with the stored-digest parameters.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{Iterations: pbkdf2Iterations, KeyLen: pbkdf2KeyLen}
}

// NewSalt returns 16 random bytes, hex encoded.
func (h *PBKDF2Hasher) NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash derives the digest of password. The hex salt string itself is the
// PBKDF2 salt.
func (h *PBKDF2Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, h.KeyLen, sha512.New)
	return hex.EncodeToString(key)
}

func (h *PBKDF2Hasher) Verify(password, salt, digest string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
