package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
)

// Context keys populated by WithSession.
const (
	ContextSession   = "session"     // *auth.Session, nil when unauthenticated
	ContextViaBearer = "via_bearer"  // bool, true when auth came from a Bearer token
)

// WithSession decodes the caller's identity and stores it in the
// request context. It looks at the session cookie first, then at an
// Authorization Bearer token carrying the same signed payload (used
// by the game client, which has no cookie jar). The middleware never
// rejects a request; the route guard and handlers decide what an
// absent session means for their route.
func WithSession(m *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(auth.CookieName); err == nil {
				if s := m.Parse(cookie.Value); s != nil {
					c.Set(ContextSession, s)
					return next(c)
				}
			}
			if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				if s := m.Parse(strings.TrimPrefix(h, "Bearer ")); s != nil {
					c.Set(ContextSession, s)
					c.Set(ContextViaBearer, true)
				}
			}
			return next(c)
		}
	}
}

// SessionFrom returns the decoded session from context, or nil.
func SessionFrom(c echo.Context) *auth.Session {
	if s, ok := c.Get(ContextSession).(*auth.Session); ok {
		return s
	}
	return nil
}

// ViaBearer reports whether the request authenticated with a Bearer
// token rather than the session cookie.
func ViaBearer(c echo.Context) bool {
	b, _ := c.Get(ContextViaBearer).(bool)
	return b
}
