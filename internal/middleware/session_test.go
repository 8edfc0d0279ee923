package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
)

func TestWithSession(t *testing.T) {
	m := auth.NewManager("middleware-test-secret-0123456789", time.Hour, false, nil)
	value, _, err := m.Create(5, "mia@example.com", model.RoleUser)
	require.NoError(t, err)

	// The handler reports what the middleware decoded.
	var got *auth.Session
	var bearer bool
	e := echo.New()
	e.Use(middleware.WithSession(m))
	e.GET("/probe", func(c echo.Context) error {
		got = middleware.SessionFrom(c)
		bearer = middleware.ViaBearer(c)
		return c.NoContent(http.StatusOK)
	})

	serve := func(prep func(*http.Request)) {
		got, bearer = nil, false
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		prep(req)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("valid cookie decodes", func(t *testing.T) {
		serve(func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: value})
		})
		require.NotNil(t, got)
		require.Equal(t, uint64(5), got.UserID)
		require.False(t, bearer)
	})

	t.Run("bearer token decodes and is flagged", func(t *testing.T) {
		serve(func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+value)
		})
		require.NotNil(t, got)
		require.Equal(t, uint64(5), got.UserID)
		require.True(t, bearer)
	})

	t.Run("tampered cookie yields no session", func(t *testing.T) {
		serve(func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: value + "x"})
		})
		require.Nil(t, got)
	})

	t.Run("no credentials yields no session", func(t *testing.T) {
		serve(func(r *http.Request) {})
		require.Nil(t, got)
	})
}
