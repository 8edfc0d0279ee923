package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/repository"
)

// BacklogHandler serves the community suggestion list and voting.
type BacklogHandler struct {
	Items    *repository.BacklogRepo
	Sessions *auth.Manager
}

func NewBacklogHandler(r *repository.BacklogRepo, m *auth.Manager) *BacklogHandler {
	return &BacklogHandler{Items: r, Sessions: m}
}

type backlogItemResp struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Status    string `json:"status"`
	Votes     int64  `json:"votes"`
	CreatedAt string `json:"createdAt"`
}

type createItemReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// List returns all suggestions, most voted first. Public.
func (h *BacklogHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Items.List(ctx)
	if err != nil {
		c.Logger().Errorf("backlog: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "backlog unavailable"})
	}
	out := make([]backlogItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, backlogItemResp{
			ID:        it.PublicID,
			Title:     it.Title,
			Body:      it.Body,
			Status:    it.Status,
			Votes:     it.Votes,
			CreatedAt: it.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create files a new suggestion.
func (h *BacklogHandler) Create(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	if !checkCSRF(c) {
		return nil
	}

	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)

	var fields []string
	if len(req.Title) < 3 || len(req.Title) > 120 {
		fields = append(fields, "title")
	}
	if len(req.Body) > 2000 {
		fields = append(fields, "body")
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid suggestion", "fields": fields})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	it, err := h.Items.Create(ctx, u.ID, req.Title, req.Body)
	if err != nil {
		c.Logger().Errorf("backlog: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, backlogItemResp{
		ID:     it.PublicID,
		Title:  it.Title,
		Body:   it.Body,
		Status: it.Status,
	})
}

// Vote adds the caller's vote to an item. One vote per user per item.
func (h *BacklogHandler) Vote(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	if !checkCSRF(c) {
		return nil
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	it, err := h.Items.GetByPublicID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		c.Logger().Errorf("backlog: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "vote failed"})
	}
	if err := h.Items.Vote(ctx, it.ID, u.ID); err != nil {
		if err == repository.ErrDuplicateVote {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already voted"})
		}
		c.Logger().Errorf("backlog: vote failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "vote failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Unvote removes the caller's vote. Removing an absent vote succeeds.
func (h *BacklogHandler) Unvote(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	if !checkCSRF(c) {
		return nil
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	it, err := h.Items.GetByPublicID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		c.Logger().Errorf("backlog: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unvote failed"})
	}
	if err := h.Items.Unvote(ctx, it.ID, u.ID); err != nil {
		c.Logger().Errorf("backlog: unvote failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unvote failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
