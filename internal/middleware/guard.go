package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/model"
)

// Navigation targets used by the guard's redirects.
const (
	LoginPath   = "/login"
	AccountPath = "/account"
)

// RouteClasses lists the path prefixes for each protection level.
// Classification is longest-prefix match, so "/" in Public acts as
// the default while deeper prefixes override it. Admin prefixes are
// a subset of protected: they additionally require staff or admin
// role.
type RouteClasses struct {
	Public    []string
	Protected []string
	Admin     []string
}

// DefaultRouteClasses covers the site's layout. Leaderboard and
// backlog reads are public; their mutating endpoints re-check the
// session themselves, as every API handler does.
func DefaultRouteClasses() RouteClasses {
	return RouteClasses{
		Public:    []string{"/", "/healthz", "/login", "/v1/auth", "/v1/leaderboard", "/v1/backlog"},
		Protected: []string{"/account", "/v1/me"},
		Admin:     []string{"/admin", "/v1/admin"},
	}
}

type routeClass int

const (
	classPublic routeClass = iota
	classProtected
	classAdmin
)

// Guard classifies every request as public, protected or admin and
// enforces session presence and role before any handler runs. It
// only reads the already-decoded session from context; WithSession
// must be registered first. Browser navigation gets redirects, API
// paths (under /v1/) get JSON errors.
func Guard(classes RouteClasses) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			switch classify(classes, path) {
			case classPublic:
				return next(c)
			case classProtected:
				if SessionFrom(c) == nil {
					return denyUnauthenticated(c, path)
				}
				return next(c)
			default: // admin
				s := SessionFrom(c)
				if s == nil {
					return denyUnauthenticated(c, path)
				}
				if !s.Role.Meets(model.RoleStaff) {
					// Authenticated but not authorized: a friendly
					// downgrade to the account page, not an error page.
					if isAPIPath(path) {
						return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
					}
					return c.Redirect(http.StatusSeeOther, AccountPath)
				}
				return next(c)
			}
		}
	}
}

// classify picks the class whose prefix matches the most of path.
func classify(classes RouteClasses, path string) routeClass {
	best, bestLen := classPublic, -1
	scan := func(prefixes []string, class routeClass) {
		for _, p := range prefixes {
			if prefixMatches(path, p) && len(p) > bestLen {
				best, bestLen = class, len(p)
			}
		}
	}
	scan(classes.Public, classPublic)
	scan(classes.Protected, classProtected)
	scan(classes.Admin, classAdmin)
	return best
}

// prefixMatches is a path-segment prefix test: "/admin" matches
// "/admin" and "/admin/stats" but not "/administrator".
func prefixMatches(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func denyUnauthenticated(c echo.Context, path string) error {
	if isAPIPath(path) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	// Preserve the requested page so login can bounce back.
	return c.Redirect(http.StatusSeeOther, LoginPath+"?next="+url.QueryEscape(path))
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/v1/")
}
