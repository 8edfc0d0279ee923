package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/luminarygames/embervale-site/internal/model"
)

// TokenRepo persists the single-use auth tokens behind the
// password-reset and magic-link flows ('auth_tokens' table).
//
// The "at most one active token per user per type" invariant is
// enforced here by calling InvalidateAllActive before each insert.
// A stricter schema would carry a filtered unique index over
// (user_id, token_type) WHERE used_at IS NULL instead of relying on
// caller discipline; MySQL cannot express that directly, which is
// why the application-level invalidation stays.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Insert stores a freshly issued token.
func (r *TokenRepo) Insert(ctx context.Context, t model.AuthToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (token, token_type, user_id, email, expires_at) VALUES (?,?,?,?,?)",
		t.Token, string(t.Type), t.UserID, t.Email, t.ExpiresAt)
	return err
}

// FindActive returns the token row only while it is consumable:
// matching value and type, unconsumed, unexpired. Everything else is
// ErrNotFound; a consumed token stays invalid even before expiry.
func (r *TokenRepo) FindActive(ctx context.Context, token string, typ model.TokenType) (model.AuthToken, error) {
	var (
		t      model.AuthToken
		usedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, token, token_type, user_id, email, expires_at, used_at, created_at FROM auth_tokens WHERE token=? AND token_type=? LIMIT 1",
		token, string(typ)).
		Scan(&t.ID, &t.Token, &t.Type, &t.UserID, &t.Email, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.AuthToken{}, ErrNotFound
	}
	if err != nil {
		return model.AuthToken{}, err
	}
	if usedAt.Valid {
		return model.AuthToken{}, ErrNotFound
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return model.AuthToken{}, ErrNotFound
	}
	return t, nil
}

// MarkUsed consumes a token. Only the first caller flips the row;
// used_at IS NULL in the predicate makes consumption single-use even
// under concurrent submits.
func (r *TokenRepo) MarkUsed(ctx context.Context, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE auth_tokens SET used_at=NOW() WHERE token=? AND used_at IS NULL", token)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateAllActive consumes every outstanding token of one type
// for a user, called before issuing a replacement.
func (r *TokenRepo) InvalidateAllActive(ctx context.Context, userID uint64, typ model.TokenType) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auth_tokens SET used_at=NOW() WHERE user_id=? AND token_type=? AND used_at IS NULL",
		userID, string(typ))
	return err
}
