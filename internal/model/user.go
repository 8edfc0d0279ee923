package model

import "time"

// Role is the closed set of account roles. Roles are ordered:
// admin > staff > user. Routing authorization through Meets keeps
// role checks exhaustive instead of scattering loose string
// comparisons across handlers.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// roleRank maps each role to its position in the ordering. Unknown
// roles rank below user so a corrupted value never grants access.
var roleRank = map[Role]int{
	RoleUser:  1,
	RoleStaff: 2,
	RoleAdmin: 3,
}

// ParseRole normalizes a stored role string into a Role. Empty or
// unrecognized values default to RoleUser, which preserves sessions
// created before role tracking existed.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStaff:
		return RoleStaff
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Meets reports whether r grants at least the capabilities of min.
func (r Role) Meets(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User represents an account record as stored in the `users` table.
// Accounts created through OAuth or Steam carry no password hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash; empty for provider-only accounts.
//  Role         – account role (user, staff, admin).
//  Provider     – identity provider ("", "google", "discord", "steam").
//  ProviderID   – provider-side subject identifier, if any.
//  Disabled     – whether the account has been disabled by staff.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	Provider     string    // users.provider
	ProviderID   string    // users.provider_id
	Disabled     bool      // users.disabled
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
