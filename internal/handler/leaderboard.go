package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luminarygames/embervale-site/internal/auth"
	"github.com/luminarygames/embervale-site/internal/repository"
)

// LeaderboardHandler serves the public top list and score submission.
type LeaderboardHandler struct {
	Scores   *repository.ScoreRepo
	Sessions *auth.Manager
}

func NewLeaderboardHandler(s *repository.ScoreRepo, m *auth.Manager) *LeaderboardHandler {
	return &LeaderboardHandler{Scores: s, Sessions: m}
}

type scoreEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"displayName"`
	Score       int64  `json:"score"`
	AchievedAt  string `json:"achievedAt"`
}

type submitScoreReq struct {
	DisplayName string `json:"displayName"`
	Mode        string `json:"mode"`
	Score       int64  `json:"score"`
}

// Top returns the best scores for a mode. Public; the response cache
// middleware in front of it absorbs front-page traffic.
func (h *LeaderboardHandler) Top(c echo.Context) error {
	limit := 25
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	mode := strings.TrimSpace(c.QueryParam("mode"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	scores, err := h.Scores.Top(ctx, mode, limit)
	if err != nil {
		c.Logger().Errorf("leaderboard: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leaderboard unavailable"})
	}

	entries := make([]scoreEntry, 0, len(scores))
	for i, s := range scores {
		entries = append(entries, scoreEntry{
			Rank:        i + 1,
			DisplayName: s.DisplayName,
			Score:       s.Score,
			AchievedAt:  s.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"mode": modeOrDefault(mode), "entries": entries})
}

// Submit records a score for the signed-in player. The game client
// authenticates with a Bearer token (CSRF-exempt); browser submits
// ride the cookie and must carry the CSRF token.
func (h *LeaderboardHandler) Submit(c echo.Context) error {
	u, _, ok := currentUser(c, h.Sessions)
	if !ok {
		return nil
	}
	if !checkCSRF(c) {
		return nil
	}

	var req submitScoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score <= 0 || req.Score > 1_000_000_000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score out of range", "fields": []string{"score"}})
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		// Default to the email local part; Steam accounts get their id.
		name = strings.SplitN(u.Email, "@", 2)[0]
	}
	if len(name) > 32 {
		name = name[:32]
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	improved, err := h.Scores.SubmitBest(ctx, u.ID, name, modeOrDefault(req.Mode), req.Score)
	if err != nil {
		c.Logger().Errorf("leaderboard: submit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"improved": improved})
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return "standard"
	}
	return mode
}
