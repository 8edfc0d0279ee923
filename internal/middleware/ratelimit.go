package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/ratelimit"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// RateLimit gates a route group with the given policy, keyed by
// client IP plus a hash of the user agent. Credential handlers that
// need the email folded into the key call the limiter directly after
// binding the body; this middleware covers everything keyable before
// the handler runs.
func RateLimit(l *ratelimit.Limiter, p ratelimit.Policy) echo.MiddlewareFunc {
	if l == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := utils.ClientIdentifier(c.RealIP(), c.Request().UserAgent(), "")
			res := l.Check(p.Name+":"+id, p)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(p.Max))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				return TooManyRequests(c, res)
			}
			return next(c)
		}
	}
}

// TooManyRequests writes the standard 429 contract: Retry-After
// header in seconds plus a JSON body with error and retryAfter.
func TooManyRequests(c echo.Context, res ratelimit.Result) error {
	c.Response().Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":      "too many requests",
		"retryAfter": res.RetryAfter,
	})
}
