// Package repository is the data access layer over the hosted MySQL
// database. This file defines sentinel errors reused across the
// repositories so handlers can map failure cases onto HTTP statuses
// without string matching.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Handlers on
// enumeration-sensitive flows must fold it into the uniform response
// rather than surfacing a 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with the unique
// email index. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateVote is returned when a user votes twice on the same
// backlog item; the unique (item_id, user_id) index enforces it.
var ErrDuplicateVote = errors.New("already voted")
