package utils // package utils provides helper functions for token generation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewAuthTokenValue returns a hex-encoded 256-bit random token used
// for password-reset and magic-link URLs. The value is handed to the
// user verbatim; its entropy is the only thing standing between an
// attacker and the account, so it always comes from crypto/rand.
func NewAuthTokenValue() (string, error) {
	return randomHex(32) // 32 bytes -> 64 hex chars
}

// NewStateValue returns a short random value for OAuth state cookies.
func NewStateValue() (string, error) {
	return randomHex(16)
}

// HashSHA256 returns the SHA-256 digest of s as a hex string.
func HashSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
