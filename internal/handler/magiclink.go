package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
	"github.com/luminarygames/embervale-site/internal/repository"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// linkSentMessage mirrors the reset flow's uniform response.
const linkSentMessage = "If an account exists for that address, a sign-in link has been sent."

// MagicLinkHandler implements passwordless sign-in: a single-use,
// short-lived URL mailed to the account address.
type MagicLinkHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Sessions *auth.Manager
	Limiter  *ratelimit.Limiter
	Policies ratelimit.PolicySet
}

func NewMagicLinkHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s *auth.Manager, l *ratelimit.Limiter, p ratelimit.PolicySet) *MagicLinkHandler {
	return &MagicLinkHandler{Cfg: cfg, Users: u, Tokens: t, Sessions: s, Limiter: l, Policies: p}
}

// Request issues a magic-link token for an existing account.
func (h *MagicLinkHandler) Request(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required", "fields": []string{"email"}})
	}

	pol := h.Policies.Get(ratelimit.PolicyMagic)
	if res := h.Limiter.Check(limiterIdentifier(c, pol.Name, req.Email), pol); !res.Allowed {
		return appmw.TooManyRequests(c, res)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || u.Disabled {
		if err != nil && err != repository.ErrNotFound {
			c.Logger().Errorf("magic-link: query failed: %v", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": linkSentMessage})
	}

	value, err := utils.NewAuthTokenValue()
	if err != nil {
		c.Logger().Errorf("magic-link: token generation failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": linkSentMessage})
	}
	if err := h.Tokens.InvalidateAllActive(ctx, u.ID, model.TokenMagicLink); err != nil {
		c.Logger().Errorf("magic-link: invalidate failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": linkSentMessage})
	}
	tok := model.AuthToken{
		Token:     value,
		Type:      model.TokenMagicLink,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: time.Now().UTC().Add(time.Duration(h.Cfg.MagicTTLMin) * time.Minute),
	}
	if err := h.Tokens.Insert(ctx, tok); err != nil {
		c.Logger().Errorf("magic-link: insert token failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": linkSentMessage})
	}

	link := h.Cfg.BaseURL + "/v1/auth/magic?token=" + value
	go publishAuthEmail(u.Email, "Your Embervale sign-in link",
		fmt.Sprintf("This link signs you in and expires in %d minutes: %s", h.Cfg.MagicTTLMin, link),
		"magic_link")

	return c.JSON(http.StatusOK, echo.Map{"message": linkSentMessage})
}

// Consume is the browser-navigation half of the flow: it validates
// the token from the URL, burns it, sets the session cookie and
// redirects into the site. Failures redirect back to the login page
// rather than returning JSON.
func (h *MagicLinkHandler) Consume(c echo.Context) error {
	value := strings.TrimSpace(c.QueryParam("token"))
	if value == "" {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=invalid_link")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	tok, err := h.Tokens.FindActive(ctx, value, model.TokenMagicLink)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=invalid_link")
	}
	// Burn before sign-in so a raced second click loses cleanly.
	if err := h.Tokens.MarkUsed(ctx, tok.Token); err != nil {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=invalid_link")
	}

	u, err := h.Users.GetByID(ctx, tok.UserID)
	if err != nil || u.Disabled {
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=invalid_link")
	}

	cookieValue, _, err := h.Sessions.Create(u.ID, u.Email, u.Role)
	if err != nil {
		c.Logger().Errorf("magic-link: issue session failed: %v", err)
		return c.Redirect(http.StatusSeeOther, appmw.LoginPath+"?error=try_again")
	}
	c.SetCookie(h.Sessions.Cookie(cookieValue))
	return c.Redirect(http.StatusSeeOther, appmw.AccountPath)
}
