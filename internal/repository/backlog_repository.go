package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/luminarygames/embervale-site/internal/model"
)

// BacklogRepo persists community suggestions and their votes
// ('backlog_items' and 'backlog_votes' tables).
type BacklogRepo struct{ DB *sql.DB }

func NewBacklogRepo(db *sql.DB) *BacklogRepo { return &BacklogRepo{DB: db} }

// List returns all items with their vote counts, most voted first.
func (r *BacklogRepo) List(ctx context.Context) ([]model.BacklogItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT i.id, i.public_id, i.user_id, i.title, i.body, i.status, i.created_at,
		        COUNT(v.id) AS votes
		   FROM backlog_items i
		   LEFT JOIN backlog_votes v ON v.item_id = i.id
		  GROUP BY i.id
		  ORDER BY votes DESC, i.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BacklogItem
	for rows.Next() {
		var it model.BacklogItem
		if err := rows.Scan(&it.ID, &it.PublicID, &it.UserID, &it.Title, &it.Body, &it.Status, &it.CreatedAt, &it.Votes); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Create inserts a new suggestion and returns it with its public id.
func (r *BacklogRepo) Create(ctx context.Context, userID uint64, title, body string) (model.BacklogItem, error) {
	publicID := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO backlog_items (public_id, user_id, title, body, status) VALUES (?,?,?,?, 'open')",
		publicID, userID, title, body)
	if err != nil {
		return model.BacklogItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.BacklogItem{}, err
	}
	return model.BacklogItem{
		ID:       uint64(id),
		PublicID: publicID,
		UserID:   userID,
		Title:    title,
		Body:     body,
		Status:   "open",
	}, nil
}

// GetByPublicID resolves the client-facing uuid to an item.
func (r *BacklogRepo) GetByPublicID(ctx context.Context, publicID string) (model.BacklogItem, error) {
	var it model.BacklogItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, public_id, user_id, title, body, status, created_at FROM backlog_items WHERE public_id=? LIMIT 1",
		publicID).
		Scan(&it.ID, &it.PublicID, &it.UserID, &it.Title, &it.Body, &it.Status, &it.CreatedAt)
	if err == sql.ErrNoRows {
		return model.BacklogItem{}, ErrNotFound
	}
	return it, err
}

// Vote records one user's vote. The unique (item_id, user_id) index
// turns a double vote into ErrDuplicateVote.
func (r *BacklogRepo) Vote(ctx context.Context, itemID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO backlog_votes (item_id, user_id) VALUES (?,?)", itemID, userID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateVote
		}
		return err
	}
	return nil
}

// Unvote removes a vote. Idempotent: removing an absent vote is fine.
func (r *BacklogRepo) Unvote(ctx context.Context, itemID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM backlog_votes WHERE item_id=? AND user_id=?", itemID, userID)
	return err
}
