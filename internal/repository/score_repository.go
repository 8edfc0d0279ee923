package repository

import (
	"context"
	"database/sql"

	"github.com/luminarygames/embervale-site/internal/model"
)

// ScoreRepo persists leaderboard entries ('scores' table). The table
// carries a unique index over (user_id, mode) so each player holds at
// most one row per mode.
type ScoreRepo struct{ DB *sql.DB }

func NewScoreRepo(db *sql.DB) *ScoreRepo { return &ScoreRepo{DB: db} }

// Top returns the highest scores for a mode, best first. An empty
// mode selects the default mode.
func (r *ScoreRepo) Top(ctx context.Context, mode string, limit int) ([]model.Score, error) {
	if mode == "" {
		mode = "standard"
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, display_name, mode, score, created_at, updated_at FROM scores WHERE mode=? ORDER BY score DESC, updated_at ASC LIMIT ?",
		mode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Score, 0, limit)
	for rows.Next() {
		var s model.Score
		if err := rows.Scan(&s.ID, &s.UserID, &s.DisplayName, &s.Mode, &s.Score, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SubmitBest records a score, keeping only the player's best per
// mode. Returns true when the leaderboard row changed (new entry or
// improvement). MySQL reports 1 affected row for an insert and 2 for
// an actual update, 0 when the upsert left the row untouched.
func (r *ScoreRepo) SubmitBest(ctx context.Context, userID uint64, displayName, mode string, score int64) (bool, error) {
	if mode == "" {
		mode = "standard"
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO scores (user_id, display_name, mode, score)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   display_name = IF(VALUES(score) > score, VALUES(display_name), display_name),
		   score        = GREATEST(score, VALUES(score))`,
		userID, displayName, mode, score)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of leaderboard rows, used by admin stats.
func (r *ScoreRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM scores").Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
