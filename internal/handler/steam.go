package handler

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/repository"
)

// Steam still speaks OpenID 2.0, not OAuth: we redirect the browser
// to Steam, and Steam redirects back with a signed assertion that we
// verify server-to-server via check_authentication. Two plain HTTP
// round-trips, no client secret involved.
const (
	steamOpenIDURL = "https://steamcommunity.com/openid/login"
	openIDNS       = "http://specs.openid.net/auth/2.0"
	openIDSelect   = "http://specs.openid.net/auth/2.0/identifier_select"
	steamIDPrefix  = "https://steamcommunity.com/openid/id/"
)

// SteamHandler implements Steam sign-in.
type SteamHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *auth.Manager
	Client   *http.Client
}

func NewSteamHandler(cfg config.Config, u *repository.UserRepo, s *auth.Manager) *SteamHandler {
	return &SteamHandler{Cfg: cfg, Users: u, Sessions: s, Client: &http.Client{Timeout: 10 * time.Second}}
}

// Start redirects the browser to Steam's OpenID endpoint.
func (h *SteamHandler) Start(c echo.Context) error {
	params := url.Values{
		"openid.ns":         {openIDNS},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {h.Cfg.BaseURL + "/v1/auth/steam/return"},
		"openid.realm":      {h.Cfg.BaseURL},
		"openid.identity":   {openIDSelect},
		"openid.claimed_id": {openIDSelect},
	}
	return c.Redirect(http.StatusSeeOther, steamOpenIDURL+"?"+params.Encode())
}

// Return handles Steam's redirect back. The assertion in the query
// string is replayed to Steam with mode=check_authentication; only
// an is_valid:true answer from Steam itself is trusted.
func (h *SteamHandler) Return(c echo.Context) error {
	query := c.Request().URL.Query()
	if query.Get("openid.mode") != "id_res" {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=steam_failed")
	}

	steamID, ok := parseSteamID(query.Get("openid.claimed_id"))
	if !ok {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=steam_failed")
	}

	verify := url.Values{}
	for k, vs := range query {
		if strings.HasPrefix(k, "openid.") {
			verify[k] = vs
		}
	}
	verify.Set("openid.mode", "check_authentication")

	resp, err := h.Client.PostForm(steamOpenIDURL, verify)
	if err != nil {
		c.Logger().Errorf("steam: verification request failed: %v", err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=steam_failed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || !strings.Contains(string(body), "is_valid:true") {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=steam_failed")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// Steam does not expose an email address; a synthetic one keeps
	// the unique index on users.email happy.
	u, err := h.Users.UpsertProvider(ctx, "steam-"+steamID+"@users.embervale.gg", "steam", steamID)
	if err != nil {
		c.Logger().Errorf("steam: upsert failed: %v", err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=steam_failed")
	}
	if u.Disabled {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=account_disabled")
	}

	value, _, err := h.Sessions.Create(u.ID, u.Email, u.Role)
	if err != nil {
		c.Logger().Errorf("steam: issue session failed: %v", err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=try_again")
	}
	c.SetCookie(h.Sessions.Cookie(value))
	return c.Redirect(http.StatusSeeOther, appmw.AccountPath)
}

// parseSteamID extracts the 64-bit id from the claimed_id URL.
func parseSteamID(claimedID string) (string, bool) {
	if !strings.HasPrefix(claimedID, steamIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(claimedID, steamIDPrefix)
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
