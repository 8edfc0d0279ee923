// Package auth holds the session codec, the CSRF check and the
// password policy. Sessions are entirely client-held: a signed cookie
// carries the identity, and there is no server-side session store.
// The flip side is documented where it bites — logout cannot revoke a
// cookie that was captured elsewhere; it stays valid until expiry.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/luminarygames/embervale-site/internal/model"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "embervale_session"

// Session is the decoded content of a verified session cookie.
type Session struct {
	UserID    uint64
	Email     string
	Role      model.Role
	CSRFToken string
	SessionID string // jti claim, reserved for a future deny-index
	IssuedAt  time.Time
}

// UserFetcher is the narrow slice of the user store the freshness
// check needs. *repository.UserRepo satisfies it.
type UserFetcher interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Manager creates and parses session cookies. The payload is an
// HS256 JWT over {sub, email, role, csrf, jti, iat, exp}; integrity
// comes from the signature, confidentiality is not a goal (the
// payload holds nothing the user does not already know).
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	users  UserFetcher
}

func NewManager(secret string, ttl time.Duration, secure bool, users UserFetcher) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure, users: users}
}

// Create signs a new session for the given identity and returns the
// cookie value together with the decoded session. A fresh 128-bit
// CSRF token is generated per session.
func (m *Manager) Create(userID uint64, email string, role model.Role) (string, Session, error) {
	csrfBytes := make([]byte, 16)
	if _, err := rand.Read(csrfBytes); err != nil {
		return "", Session{}, err
	}
	s := Session{
		UserID:    userID,
		Email:     email,
		Role:      role,
		CSRFToken: hex.EncodeToString(csrfBytes),
		SessionID: uuid.NewString(),
		IssuedAt:  time.Now().UTC(),
	}

	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"email": email,
		"role":  string(role),
		"csrf":  s.CSRFToken,
		"jti":   s.SessionID,
		"iat":   s.IssuedAt.Unix(),
		"exp":   s.IssuedAt.Add(m.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", Session{}, err
	}
	return signed, s, nil
}

// Parse verifies a cookie value and returns the session it encodes.
// Any failure at all (bad signature, tampered payload, malformed
// structure, expired token) yields nil; a partially trusted payload
// is never returned.
func (m *Manager) Parse(value string) *Session {
	if value == "" {
		return nil
	}
	tok, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || uid == 0 {
		return nil
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	csrf, _ := claims["csrf"].(string)
	jti, _ := claims["jti"].(string)
	var issued time.Time
	if iat, ok := claims["iat"].(float64); ok {
		issued = time.Unix(int64(iat), 0).UTC()
	}
	return &Session{
		UserID:    uid,
		Email:     email,
		Role:      model.ParseRole(roleStr), // absent role -> user
		CSRFToken: csrf,
		SessionID: jti,
		IssuedAt:  issued,
	}
}

// Validate re-fetches the bound user record and reports whether the
// session is still good. A cookie that verifies cryptographically can
// outlive its account: the user may have been deleted or disabled
// since issuance, and with no revocation list this lookup is the only
// thing that catches it.
func (m *Manager) Validate(ctx context.Context, s *Session) (model.User, bool) {
	if s == nil {
		return model.User{}, false
	}
	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil || u.Disabled {
		return model.User{}, false
	}
	return u, true
}

// Cookie wraps a signed value in the session cookie directives:
// HTTP-only, Secure (outside dev), SameSite=Lax.
func (m *Manager) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns the directive that deletes the session cookie.
// This is the whole of logout: with no server-side store there is
// nothing else to invalidate.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
