package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/repository"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// stateCookie holds the OAuth state value between the redirect out
// and the provider's callback.
const stateCookie = "oauth_state"

// provider bundles an oauth2 config with the call that turns an
// access token into (subject, email).
type provider struct {
	conf    *oauth2.Config
	profile func(ctx context.Context, client *http.Client) (id, email string, err error)
}

// OAuthHandler implements the Google and Discord login flows.
type OAuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Sessions  *auth.Manager
	providers map[string]provider
}

func NewOAuthHandler(cfg config.Config, u *repository.UserRepo, s *auth.Manager) *OAuthHandler {
	h := &OAuthHandler{Cfg: cfg, Users: u, Sessions: s, providers: map[string]provider{}}

	if cfg.GoogleClientID != "" {
		h.providers["google"] = provider{
			conf: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleSecret,
				RedirectURL:  cfg.BaseURL + "/v1/auth/oauth/google/callback",
				Scopes:       []string{"openid", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://accounts.google.com/o/oauth2/auth",
					TokenURL: "https://oauth2.googleapis.com/token",
				},
			},
			profile: fetchJSONProfile("https://www.googleapis.com/oauth2/v2/userinfo"),
		}
	}
	if cfg.DiscordClientID != "" {
		h.providers["discord"] = provider{
			conf: &oauth2.Config{
				ClientID:     cfg.DiscordClientID,
				ClientSecret: cfg.DiscordSecret,
				RedirectURL:  cfg.BaseURL + "/v1/auth/oauth/discord/callback",
				Scopes:       []string{"identify", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://discord.com/oauth2/authorize",
					TokenURL: "https://discord.com/api/oauth2/token",
				},
			},
			profile: fetchJSONProfile("https://discord.com/api/users/@me"),
		}
	}
	return h
}

// fetchJSONProfile builds a profile fetcher for providers whose
// userinfo endpoint returns {"id": ..., "email": ...}.
func fetchJSONProfile(url string) func(context.Context, *http.Client) (string, string, error) {
	return func(ctx context.Context, client *http.Client) (string, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", "", err
		}
		defer resp.Body.Close()

		var body struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", "", err
		}
		return body.ID, strings.ToLower(body.Email), nil
	}
}

// Start redirects the browser to the provider's consent page with a
// fresh state value pinned in a short-lived cookie.
func (h *OAuthHandler) Start(c echo.Context) error {
	p, ok := h.providers[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}
	state, err := utils.NewStateValue()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start failed"})
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/v1/auth/oauth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, p.conf.AuthCodeURL(state))
}

// Callback finishes the flow: state check, code exchange, profile
// fetch, account upsert, session cookie. Every failure lands back on
// the login page; a browser mid-redirect cannot use a JSON error.
func (h *OAuthHandler) Callback(c echo.Context) error {
	name := c.Param("provider")
	p, ok := h.providers[name]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown provider"})
	}

	cookie, err := c.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=oauth_state")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := p.conf.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		c.Logger().Errorf("oauth %s: exchange failed: %v", name, err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=oauth_failed")
	}
	subject, email, err := p.profile(ctx, p.conf.Client(ctx, tok))
	if err != nil || subject == "" {
		c.Logger().Errorf("oauth %s: profile fetch failed: %v", name, err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=oauth_failed")
	}

	u, err := h.Users.UpsertProvider(ctx, email, name, subject)
	if err != nil {
		c.Logger().Errorf("oauth %s: upsert failed: %v", name, err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=oauth_failed")
	}
	if u.Disabled {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=account_disabled")
	}

	value, _, err := h.Sessions.Create(u.ID, u.Email, u.Role)
	if err != nil {
		c.Logger().Errorf("oauth %s: issue session failed: %v", name, err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=try_again")
	}
	c.SetCookie(h.Sessions.Cookie(value))
	return c.Redirect(http.StatusSeeOther, appmw.AccountPath)
}
