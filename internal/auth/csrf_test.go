package auth_test

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
)

func TestValidateCSRF(t *testing.T) {
	s := &auth.Session{UserID: 1, CSRFToken: "0123456789abcdef0123456789abcdef"}

	t.Run("matching header passes", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		r.Header.Set(auth.CSRFHeader, s.CSRFToken)
		require.True(t, auth.ValidateCSRF(r, s))
	})

	t.Run("matching form field passes", func(t *testing.T) {
		form := url.Values{"csrf_token": {s.CSRFToken}}
		r := httptest.NewRequest("POST", "/v1/backlog", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.True(t, auth.ValidateCSRF(r, s))
	})

	t.Run("absent token fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		require.False(t, auth.ValidateCSRF(r, s))
	})

	t.Run("mismatched token fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		r.Header.Set(auth.CSRFHeader, "ffffffffffffffffffffffffffffffff")
		require.False(t, auth.ValidateCSRF(r, s))
	})

	t.Run("prefix of the token fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		r.Header.Set(auth.CSRFHeader, s.CSRFToken[:16])
		require.False(t, auth.ValidateCSRF(r, s))
	})

	t.Run("nil session fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		r.Header.Set(auth.CSRFHeader, s.CSRFToken)
		require.False(t, auth.ValidateCSRF(r, nil))
	})

	t.Run("session without token fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/backlog", nil)
		r.Header.Set(auth.CSRFHeader, "")
		require.False(t, auth.ValidateCSRF(r, &auth.Session{UserID: 1}))
	})
}
