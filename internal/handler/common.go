package handler // handler implements the JSON API endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// userPart is the identity shape returned by auth endpoints.
type userPart struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// checkCSRF enforces the CSRF token on cookie-authenticated
// mutations. Bearer-token requests are exempt: a token in the
// Authorization header cannot be attached by a cross-site form.
// Returns false after writing the 403 response.
func checkCSRF(c echo.Context) bool {
	if appmw.ViaBearer(c) {
		return true
	}
	if !auth.ValidateCSRF(c.Request(), appmw.SessionFrom(c)) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "invalid csrf token"})
		return false
	}
	return true
}

// currentUser resolves the request's session and re-fetches the live
// user record (freshness check: a signed cookie can outlive a deleted
// or disabled account). Returns ok=false after writing the 401.
func currentUser(c echo.Context, sessions *auth.Manager) (model.User, *auth.Session, bool) {
	s := appmw.SessionFrom(c)
	if s == nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return model.User{}, nil, false
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	u, ok := sessions.Validate(ctx, s)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "session is no longer valid"})
		return model.User{}, nil, false
	}
	return u, s, true
}

// limiterIdentifier builds the rate-limit key for this request,
// optionally folding in the submitted email for per-account budgets.
func limiterIdentifier(c echo.Context, policy, email string) string {
	return policy + ":" + utils.ClientIdentifier(c.RealIP(), c.Request().UserAgent(), email)
}
