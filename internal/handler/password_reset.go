package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/config"
	appmw "github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/queue"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
	"github.com/luminarygames/embervale-site/internal/repository"
	mailer "github.com/luminarygames/embervale-site/internal/service"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// resetSentMessage is returned whether or not the account exists, so
// the endpoint cannot be used to enumerate registered emails.
const resetSentMessage = "If an account exists for that address, a reset link has been sent."

// PasswordResetHandler implements the forgot/reset flow.
type PasswordResetHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Limiter  *ratelimit.Limiter
	Policies ratelimit.PolicySet
}

func NewPasswordResetHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, l *ratelimit.Limiter, p ratelimit.PolicySet) *PasswordResetHandler {
	return &PasswordResetHandler{Cfg: cfg, Users: u, Tokens: t, Limiter: l, Policies: p}
}

type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Forgot issues a password-reset token. The response is identical for
// known and unknown addresses; only the side effects differ.
func (h *PasswordResetHandler) Forgot(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required", "fields": []string{"email"}})
	}

	pol := h.Policies.Get(ratelimit.PolicyReset)
	if res := h.Limiter.Check(limiterIdentifier(c, pol.Name, req.Email), pol); !res.Allowed {
		return appmw.TooManyRequests(c, res)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err != repository.ErrNotFound {
			c.Logger().Errorf("forgot: query failed: %v", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage})
	}

	value, err := utils.NewAuthTokenValue()
	if err != nil {
		c.Logger().Errorf("forgot: token generation failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage})
	}

	// One active token per user per type: retire the older ones first.
	if err := h.Tokens.InvalidateAllActive(ctx, u.ID, model.TokenPasswordReset); err != nil {
		c.Logger().Errorf("forgot: invalidate failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage})
	}
	tok := model.AuthToken{
		Token:     value,
		Type:      model.TokenPasswordReset,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute),
	}
	if err := h.Tokens.Insert(ctx, tok); err != nil {
		c.Logger().Errorf("forgot: insert token failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage})
	}

	link := h.Cfg.BaseURL + "/reset-password?token=" + value
	go publishAuthEmail(u.Email, "Reset your Embervale password",
		fmt.Sprintf("Use this link within %d minutes to reset your password: %s", h.Cfg.ResetTTLMin, link),
		"password_reset")

	return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage})
}

// Reset consumes a token and sets the new password.
func (h *PasswordResetHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
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

	tok, err := h.Tokens.FindActive(ctx, strings.TrimSpace(req.Token), model.TokenPasswordReset)
	if err != nil {
		// Expired, consumed and never-issued tokens all read the same.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if err := h.Users.UpdatePassword(ctx, tok.UserID, req.Password, h.Cfg.BcryptCost); err != nil {
		c.Logger().Errorf("reset: update password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Tokens.MarkUsed(ctx, tok.Token); err != nil {
		c.Logger().Errorf("reset: mark used failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// publishAuthEmail queues an email without blocking the caller.
// Publish failures are logged by the publisher and dropped.
func publishAuthEmail(to, subject, text, kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = mailer.PublishEmail(ctx, queue.EmailRequestedEvent{
		To:          to,
		Subject:     subject,
		Text:        text,
		HTML:        "<p>" + text + "</p>",
		Kind:        kind,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
