package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/luminarygames/embervale-site/internal/config"
	"github.com/luminarygames/embervale-site/internal/handler"
	"github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
)

// Handlers collects every handler the router wires up. main builds it
// once and hands it over; the router stays free of construction logic.
type Handlers struct {
	Auth        *handler.AuthHandler
	Reset       *handler.PasswordResetHandler
	Magic       *handler.MagicLinkHandler
	OAuth       *handler.OAuthHandler
	Steam       *handler.SteamHandler
	Leaderboard *handler.LeaderboardHandler
	Backlog     *handler.BacklogHandler
	Admin       *handler.AdminHandler
}

// RegisterRoutes wires all routes and their middleware onto the Echo
// instance. Credential endpoints do their own rate limiting inside
// the handlers (the limiter key needs the submitted email); the
// general API and feedback policies are applied here as middleware.
func RegisterRoutes(e *echo.Echo, h Handlers, limiter *ratelimit.Limiter, policies ratelimit.PolicySet, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth operations live under /v1/auth.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/logout", h.Auth.Logout)
	g.GET("/csrf", h.Auth.CSRFToken)
	g.POST("/password/forgot", h.Reset.Forgot)
	g.POST("/password/reset", h.Reset.Reset)
	g.POST("/magic-link", h.Magic.Request)
	g.GET("/magic", h.Magic.Consume) // browser navigation, responds with redirects
	g.GET("/oauth/:provider", h.OAuth.Start)
	g.GET("/oauth/:provider/callback", h.OAuth.Callback)
	g.GET("/steam", h.Steam.Start)
	g.GET("/steam/return", h.Steam.Return)

	// Identity echo for signed-in clients; the route guard already
	// requires a session on /v1/me.
	e.GET("/v1/me", h.Auth.Me)

	// Leaderboard: cached public read, rate-limited submission.
	e.GET("/v1/leaderboard", h.Leaderboard.Top, middleware.CacheJSON(cacheCfg, rdb))
	e.POST("/v1/leaderboard/scores", h.Leaderboard.Submit,
		middleware.RateLimit(limiter, policies.Get(ratelimit.PolicyAPI)))

	// Community backlog: public read, authenticated mutations.
	e.GET("/v1/backlog", h.Backlog.List)
	e.POST("/v1/backlog", h.Backlog.Create,
		middleware.RateLimit(limiter, policies.Get(ratelimit.PolicyFeedback)))
	e.POST("/v1/backlog/:id/vote", h.Backlog.Vote,
		middleware.RateLimit(limiter, policies.Get(ratelimit.PolicyAPI)))
	e.DELETE("/v1/backlog/:id/vote", h.Backlog.Unvote,
		middleware.RateLimit(limiter, policies.Get(ratelimit.PolicyAPI)))

	// Staff dashboard; the guard enforces role before these run.
	e.GET("/v1/admin/stats", h.Admin.Overview)
}
