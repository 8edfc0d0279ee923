package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
)

// guardedEcho registers the guard behind a middleware that injects the
// given session, with a catch-all handler answering 200 "ok".
func guardedEcho(s *auth.Session) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s != nil {
				c.Set(middleware.ContextSession, s)
			}
			return next(c)
		}
	})
	e.Use(middleware.Guard(middleware.DefaultRouteClasses()))
	e.Any("/*", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGuard_PublicRoutes(t *testing.T) {
	e := guardedEcho(nil)

	for _, path := range []string{"/", "/healthz", "/login", "/v1/auth/login", "/v1/leaderboard", "/v1/backlog"} {
		rec := doGet(e, path)
		require.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestGuard_ProtectedRequiresSession(t *testing.T) {
	e := guardedEcho(nil)

	t.Run("browser path redirects to login with next", func(t *testing.T) {
		rec := doGet(e, "/account")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?next=%2Faccount", rec.Header().Get("Location"))
	})

	t.Run("api path gets json 401", func(t *testing.T) {
		rec := doGet(e, "/v1/me")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "authentication required")
	})

	t.Run("session passes", func(t *testing.T) {
		withSession := guardedEcho(&auth.Session{UserID: 1, Role: model.RoleUser})
		rec := doGet(withSession, "/account")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGuard_AdminRequiresRole(t *testing.T) {
	t.Run("no session redirects to login", func(t *testing.T) {
		e := guardedEcho(nil)
		rec := doGet(e, "/admin/stats")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?next=%2Fadmin%2Fstats", rec.Header().Get("Location"))
	})

	t.Run("plain user on browser path lands on account page", func(t *testing.T) {
		e := guardedEcho(&auth.Session{UserID: 1, Role: model.RoleUser})
		rec := doGet(e, "/admin")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, middleware.AccountPath, rec.Header().Get("Location"))
	})

	t.Run("plain user on api path gets json 403", func(t *testing.T) {
		e := guardedEcho(&auth.Session{UserID: 1, Role: model.RoleUser})
		rec := doGet(e, "/v1/admin/stats")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("staff passes", func(t *testing.T) {
		e := guardedEcho(&auth.Session{UserID: 2, Role: model.RoleStaff})
		rec := doGet(e, "/admin")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		e := guardedEcho(&auth.Session{UserID: 3, Role: model.RoleAdmin})
		rec := doGet(e, "/v1/admin/stats")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGuard_PrefixMatchingIsSegmentAware(t *testing.T) {
	e := guardedEcho(nil)

	// "/administrator" shares bytes with "/admin" but is a different
	// segment, so it falls back to the public default.
	rec := doGet(e, "/administrator")
	require.Equal(t, http.StatusOK, rec.Code)
}
