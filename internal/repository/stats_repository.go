package repository

import (
	"context"
	"database/sql"
)

// SiteStats is the admin dashboard snapshot.
type SiteStats struct {
	TotalUsers    int64  `json:"totalUsers"`
	NewUsers7d    int64  `json:"newUsers7d"`
	DisabledUsers int64  `json:"disabledUsers"`
	TotalScores   int64  `json:"totalScores"`
	BacklogItems  int64  `json:"backlogItems"`
	BacklogVotes  int64  `json:"backlogVotes"`
	TopBacklog    string `json:"topBacklogItem,omitempty"`
}

// StatsRepo aggregates counters for the admin stats endpoint.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// Overview collects the dashboard counters. Each count is a separate
// query; the endpoint is admin-only and cold, so round trips are not
// worth a combined statement.
func (r *StatsRepo) Overview(ctx context.Context) (SiteStats, error) {
	var s SiteStats
	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM users", &s.TotalUsers},
		{"SELECT COUNT(*) FROM users WHERE created_at >= NOW() - INTERVAL 7 DAY", &s.NewUsers7d},
		{"SELECT COUNT(*) FROM users WHERE disabled=1", &s.DisabledUsers},
		{"SELECT COUNT(*) FROM scores", &s.TotalScores},
		{"SELECT COUNT(*) FROM backlog_items", &s.BacklogItems},
		{"SELECT COUNT(*) FROM backlog_votes", &s.BacklogVotes},
	}
	for _, c := range counts {
		if err := r.DB.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return SiteStats{}, err
		}
	}

	err := r.DB.QueryRowContext(ctx,
		`SELECT i.title
		   FROM backlog_items i
		   LEFT JOIN backlog_votes v ON v.item_id = i.id
		  GROUP BY i.id
		  ORDER BY COUNT(v.id) DESC, i.created_at ASC
		  LIMIT 1`).Scan(&s.TopBacklog)
	if err != nil && err != sql.ErrNoRows {
		return SiteStats{}, err
	}
	return s, nil
}
