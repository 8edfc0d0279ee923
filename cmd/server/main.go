package main // Entry point package

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	"github.com/luminarygames/embervale-site/internal/database"
	"github.com/luminarygames/embervale-site/internal/handler"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/queue"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
	"github.com/luminarygames/embervale-site/internal/repository"
	"github.com/luminarygames/embervale-site/internal/router"
)

func main() {
	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: with it the rate-limit window counters are
	// shared across instances and leaderboard reads are cached;
	// without it everything degrades to per-process behavior.
	rdb := config.NewRedisClient()
	var store ratelimit.Store
	switch {
	case !rlCfg.Enabled:
		store = ratelimit.NopStore{}
		log.Printf("ratelimit: disabled by configuration")
	case rdb != nil:
		store = ratelimit.NewRedisStore(rdb, "rl")
		log.Printf("ratelimit: using shared redis store")
	default:
		store = ratelimit.NewMemoryStore(rlCfg.SweepInterval)
		log.Printf("ratelimit: redis unavailable, using in-memory store")
	}
	limiter := ratelimit.New(store)
	policies := ratelimit.NewPolicySet(rlCfg)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	scores := repository.NewScoreRepo(db)
	backlog := repository.NewBacklogRepo(db)
	stats := repository.NewStatsRepo(db)

	sessions := auth.NewManager(cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHrs)*time.Hour, cfg.Env == "prod", users)

	// Outbound emails are queued; the consumer drains them in the
	// background and keeps retrying the broker on its own.
	go func() {
		if err := queue.StartEmailConsumer(); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(appmw.WithSession(sessions))
	e.Use(appmw.Guard(appmw.DefaultRouteClasses()))

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, sessions, limiter, policies),
		Reset:       handler.NewPasswordResetHandler(cfg, users, tokens, limiter, policies),
		Magic:       handler.NewMagicLinkHandler(cfg, users, tokens, sessions, limiter, policies),
		OAuth:       handler.NewOAuthHandler(cfg, users, sessions),
		Steam:       handler.NewSteamHandler(cfg, users, sessions),
		Leaderboard: handler.NewLeaderboardHandler(scores, sessions),
		Backlog:     handler.NewBacklogHandler(backlog, sessions),
		Admin:       handler.NewAdminHandler(stats, sessions),
	}
	router.RegisterRoutes(e, h, limiter, policies, cacheCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
