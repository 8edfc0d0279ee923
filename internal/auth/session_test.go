package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/model"
)

const testSecret = "test-session-secret-0123456789ab"

// stubUsers backs the freshness check without a database.
type stubUsers struct {
	users map[uint64]model.User
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, errors.New("not found")
	}
	return u, nil
}

func newTestManager(ttl time.Duration) *auth.Manager {
	return auth.NewManager(testSecret, ttl, false, &stubUsers{})
}

func TestSessionRoundTrip(t *testing.T) {
	m := newTestManager(time.Hour)

	value, created, err := m.Create(42, "kara@example.com", model.RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, value)
	require.Len(t, created.CSRFToken, 32) // 128 bits, hex encoded
	require.NotEmpty(t, created.SessionID)

	parsed := m.Parse(value)
	require.NotNil(t, parsed)
	require.Equal(t, uint64(42), parsed.UserID)
	require.Equal(t, "kara@example.com", parsed.Email)
	require.Equal(t, model.RoleStaff, parsed.Role)
	require.Equal(t, created.CSRFToken, parsed.CSRFToken)
	require.Equal(t, created.SessionID, parsed.SessionID)
}

func TestSessionCSRFTokenIsPerSession(t *testing.T) {
	m := newTestManager(time.Hour)

	_, a, err := m.Create(1, "a@example.com", model.RoleUser)
	require.NoError(t, err)
	_, b, err := m.Create(1, "a@example.com", model.RoleUser)
	require.NoError(t, err)
	require.NotEqual(t, a.CSRFToken, b.CSRFToken)
}

func TestSessionParseRejects(t *testing.T) {
	m := newTestManager(time.Hour)
	value, _, err := m.Create(7, "nils@example.com", model.RoleUser)
	require.NoError(t, err)

	t.Run("empty value", func(t *testing.T) {
		require.Nil(t, m.Parse(""))
	})

	t.Run("garbage", func(t *testing.T) {
		require.Nil(t, m.Parse("not-a-token"))
	})

	t.Run("tampered payload", func(t *testing.T) {
		b := []byte(value)
		mid := len(b) / 2
		if b[mid] == 'A' {
			b[mid] = 'B'
		} else {
			b[mid] = 'A'
		}
		require.Nil(t, m.Parse(string(b)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewManager("a-completely-different-secret!!!", time.Hour, false, &stubUsers{})
		require.Nil(t, other.Parse(value))
	})

	t.Run("expired", func(t *testing.T) {
		short := newTestManager(-time.Minute)
		v, _, err := short.Create(7, "nils@example.com", model.RoleUser)
		require.NoError(t, err)
		require.Nil(t, short.Parse(v))
	})

	t.Run("unsigned alg", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "7",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		v, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		require.Nil(t, m.Parse(v))
	})
}

func TestSessionParseDefaultsMissingRole(t *testing.T) {
	// A token signed with the right secret but no role claim decodes
	// to the lowest role rather than failing.
	m := newTestManager(time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "9",
		"csrf": "deadbeef",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	value, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	s := m.Parse(value)
	require.NotNil(t, s)
	require.Equal(t, model.RoleUser, s.Role)
}

func TestSessionValidate(t *testing.T) {
	users := &stubUsers{users: map[uint64]model.User{
		1: {ID: 1, Email: "ok@example.com", Role: model.RoleUser},
		2: {ID: 2, Email: "off@example.com", Role: model.RoleUser, Disabled: true},
	}}
	m := auth.NewManager(testSecret, time.Hour, false, users)
	ctx := context.Background()

	t.Run("live account passes", func(t *testing.T) {
		u, ok := m.Validate(ctx, &auth.Session{UserID: 1})
		require.True(t, ok)
		require.Equal(t, "ok@example.com", u.Email)
	})

	t.Run("disabled account fails", func(t *testing.T) {
		_, ok := m.Validate(ctx, &auth.Session{UserID: 2})
		require.False(t, ok)
	})

	t.Run("deleted account fails", func(t *testing.T) {
		_, ok := m.Validate(ctx, &auth.Session{UserID: 99})
		require.False(t, ok)
	})

	t.Run("nil session fails", func(t *testing.T) {
		_, ok := m.Validate(ctx, nil)
		require.False(t, ok)
	})
}

func TestSessionCookies(t *testing.T) {
	m := auth.NewManager(testSecret, 2*time.Hour, true, &stubUsers{})

	c := m.Cookie("value")
	require.Equal(t, auth.CookieName, c.Name)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, 7200, c.MaxAge)

	exp := m.ExpiredCookie()
	require.Equal(t, auth.CookieName, exp.Name)
	require.Empty(t, exp.Value)
	require.Negative(t, exp.MaxAge)
}
