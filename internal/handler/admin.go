package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/repository"
)

// AdminHandler serves the staff dashboard counters.
type AdminHandler struct {
	Stats    *repository.StatsRepo
	Sessions *auth.Manager
}

func NewAdminHandler(r *repository.StatsRepo, m *auth.Manager) *AdminHandler {
	return &AdminHandler{Stats: r, Sessions: m}
}

// Overview returns the site counters. The route guard already gates
// /v1/admin on role, but the handler re-checks against the live user
// record: a freshly demoted staff member still holds a staff cookie.
func (h *AdminHandler) Overview(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	if !u.Role.Meets(model.RoleStaff) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	stats, err := h.Stats.Overview(ctx)
	if err != nil {
		c.Logger().Errorf("admin: stats failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	return c.JSON(http.StatusOK, stats)
}
