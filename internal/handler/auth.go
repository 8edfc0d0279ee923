package handler

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
	"github.com/luminarygames/embervale-site/internal/repository"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// AuthHandler bundles dependencies for the register/login endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *auth.Manager
	Limiter  *ratelimit.Limiter
	Policies ratelimit.PolicySet
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *auth.Manager, l *ratelimit.Limiter, p ratelimit.PolicySet) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Limiter: l, Policies: p}
}

// dummyHash absorbs a bcrypt comparison when the email is unknown so
// the login path costs the same whether or not the account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type sessionResp struct {
	User      userPart `json:"user"`
	CSRFToken string   `json:"csrfToken"`
}

// Register creates an account and signs the caller in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); req.Email == "" || err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email", "fields": []string{"email"}})
	}

	pol := h.Policies.Get(ratelimit.PolicySignup)
	if res := h.Limiter.Check(limiterIdentifier(c, pol.Name, ""), pol); !res.Allowed {
		return appmw.TooManyRequests(c, res)
	}

	if pw := auth.ValidatePassword(req.Password); !pw.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "password does not meet requirements",
			"fields": pw.Errors,
			"score":  pw.Score,
		})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		c.Logger().Errorf("register: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	value, sess, err := h.Sessions.Create(uid, req.Email, model.RoleUser)
	if err != nil {
		c.Logger().Errorf("register: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	c.SetCookie(h.Sessions.Cookie(value))

	return c.JSON(http.StatusCreated, sessionResp{
		User:      userPart{ID: uid, Email: req.Email, Role: model.RoleUser},
		CSRFToken: sess.CSRFToken,
	})
}

// Login verifies credentials and sets the session cookie. Unknown
// email and wrong password produce the identical response, and the
// unknown-email path still burns a bcrypt comparison.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	pol := h.Policies.Get(ratelimit.PolicyLogin)
	id := limiterIdentifier(c, pol.Name, req.Email)
	if res := h.Limiter.Check(id, pol); !res.Allowed {
		return appmw.TooManyRequests(c, res)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.VerifyPassword(dummyHash, req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("login: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) || u.Disabled {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Successful login clears the failed-attempt budget.
	h.Limiter.Reset(id)

	value, sess, err := h.Sessions.Create(u.ID, u.Email, u.Role)
	if err != nil {
		c.Logger().Errorf("login: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	c.SetCookie(h.Sessions.Cookie(value))

	return c.JSON(http.StatusOK, sessionResp{
		User:      userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		CSRFToken: sess.CSRFToken,
	})
}

// Logout overwrites the cookie with an expired one. Nothing exists
// server-side to invalidate, so a copy of the old cookie held
// elsewhere stays valid until its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	if appmw.SessionFrom(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !checkCSRF(c) {
		return nil
	}
	c.SetCookie(h.Sessions.ExpiredCookie())
	return c.NoContent(http.StatusNoContent)
}

// CSRFToken hands the session's token to the client so it can be
// echoed back on mutating calls.
func (h *AuthHandler) CSRFToken(c echo.Context) error {
	s := appmw.SessionFrom(c)
	if s == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"csrfToken": s.CSRFToken})
}

// Me returns the live identity behind the session, re-fetched from
// the user store so a deleted or disabled account reads as signed out.
func (h *AuthHandler) Me(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{ID: u.ID, Email: u.Email, Role: u.Role},
	})
}
