package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// ClientIdentifier derives the rate-limit key for a request from the
// client IP plus a short hash of the user agent. Hashing the agent
// keeps the key compact and avoids storing raw header values in the
// limiter table. An optional email is folded in for per-account
// throttling on credential endpoints.
func ClientIdentifier(ip, userAgent, email string) string {
	if ip == "" {
		ip = "unknown"
	}
	sum := sha1.Sum([]byte(userAgent))
	parts := []string{ip, hex.EncodeToString(sum[:4])}
	if email != "" {
		parts = append(parts, strings.ToLower(strings.TrimSpace(email)))
	}
	return strings.Join(parts, ":")
}
