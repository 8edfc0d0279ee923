package model

import "time"

// TokenType distinguishes the two single-use token flows that share
// the `auth_tokens` table.
type TokenType string

const (
	TokenPasswordReset TokenType = "password_reset"
	TokenMagicLink     TokenType = "magic_link"
)

// AuthToken models a row in the `auth_tokens` table. The token value
// itself is a 256-bit random secret, stored hex encoded. A token is
// valid only while UsedAt is null and ExpiresAt is in the future;
// consuming it sets UsedAt so replays fail even before expiry.
//
// Fields:
//  ID        – primary key identifier.
//  Token     – hex-encoded random token value.
//  Type      – password_reset or magic_link.
//  UserID    – owner of the token.
//  Email     – email the token was issued for.
//  ExpiresAt – expiration timestamp.
//  UsedAt    – when the token was consumed (null while unconsumed).
//  CreatedAt – timestamp of creation.
type AuthToken struct {
	ID        uint64     // auth_tokens.id
	Token     string     // auth_tokens.token
	Type      TokenType  // auth_tokens.token_type
	UserID    uint64     // auth_tokens.user_id
	Email     string     // auth_tokens.email
	ExpiresAt time.Time  // auth_tokens.expires_at
	UsedAt    *time.Time // auth_tokens.used_at (nullable)
	CreatedAt time.Time  // auth_tokens.created_at
}
