package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	"github.com/luminarygames/embervale-site/internal/handler"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
)

// sessionFixture signs in a fake user and returns the cookie value
// together with its CSRF token, plus an Echo app with the csrf and
// logout routes mounted behind the session middleware.
func sessionFixture(t *testing.T) (*echo.Echo, string, string) {
	t.Helper()
	m := auth.NewManager("handler-test-secret-0123456789ab", time.Hour, false, nil)
	value, sess, err := m.Create(11, "robin@example.com", model.RoleUser)
	require.NoError(t, err)

	h := handler.NewAuthHandler(config.Config{}, nil, m, nil, ratelimit.PolicySet{})
	e := echo.New()
	e.Use(appmw.WithSession(m))
	e.GET("/v1/auth/csrf", h.CSRFToken)
	e.POST("/v1/auth/logout", h.Logout)
	return e, value, sess.CSRFToken
}

func TestCSRFTokenEndpoint(t *testing.T) {
	e, cookie, token := sessionFixture(t)

	t.Run("signed-in caller gets the token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/csrf", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), token)
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/csrf", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	e, cookie, token := sessionFixture(t)

	t.Run("without csrf token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("with csrf token clears the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
		req.Header.Set(auth.CSRFHeader, token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		var cleared bool
		for _, ck := range cookies {
			if ck.Name == auth.CookieName && ck.MaxAge < 0 {
				cleared = true
			}
		}
		require.True(t, cleared, "expected an expired session cookie")
	})

	t.Run("bearer caller skips the csrf check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+cookie)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
