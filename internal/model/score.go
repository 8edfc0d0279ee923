package model

import "time"

// Score is a leaderboard entry in the `scores` table. Each user keeps
// at most one row per mode; submissions only replace a row when the
// new score beats the stored one.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – player who submitted the score.
//  DisplayName – name shown on the public leaderboard.
//  Mode        – game mode the run was played in.
//  Score       – the score value.
//  CreatedAt   – timestamp of first submission.
//  UpdatedAt   – timestamp of the latest improvement.
type Score struct {
	ID          uint64    // scores.id
	UserID      uint64    // scores.user_id
	DisplayName string    // scores.display_name
	Mode        string    // scores.mode
	Score       int64     // scores.score
	CreatedAt   time.Time // scores.created_at
	UpdatedAt   time.Time // scores.updated_at
}
