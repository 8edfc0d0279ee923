package model

import "time"

// BacklogItem is a community suggestion in the `backlog_items` table.
// The PublicID (a uuid) is what clients see and vote on; the numeric
// primary key never leaves the database layer.
//
// Fields:
//  ID        – primary key identifier.
//  PublicID  – uuid exposed to clients.
//  UserID    – author of the suggestion.
//  Title     – short summary (3–120 chars).
//  Body      – optional longer description.
//  Status    – triage state (open, planned, shipped, declined).
//  Votes     – denormalized vote count, filled in by list queries.
//  CreatedAt – timestamp of creation.
type BacklogItem struct {
	ID        uint64    // backlog_items.id
	PublicID  string    // backlog_items.public_id
	UserID    uint64    // backlog_items.user_id
	Title     string    // backlog_items.title
	Body      string    // backlog_items.body
	Status    string    // backlog_items.status
	Votes     int64     // count(backlog_votes) for this item
	CreatedAt time.Time // backlog_items.created_at
}

// BacklogVote records one user's vote on one item. The table carries
// a unique index over (item_id, user_id) so double votes fail at the
// storage layer.
//
// Fields:
//  ID        – primary key identifier.
//  ItemID    – voted item.
//  UserID    – voting user.
//  CreatedAt – timestamp of the vote.
type BacklogVote struct {
	ID        uint64    // backlog_votes.id
	ItemID    uint64    // backlog_votes.item_id
	UserID    uint64    // backlog_votes.user_id
	CreatedAt time.Time // backlog_votes.created_at
}
