package domain

import "github.com/google/uuid"

// UserID uniquely identifies an admin user within the system.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// Role is the editorial role of an admin user. It decides who may delete
// content and whose edit wins under the priority conflict strategy.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Rank orders roles from least to most privileged. Unknown roles rank lowest.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleAuthor:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.Rank() > 0 }

// Principal is the authenticated caller of an admin operation.
type Principal struct {
	UserID UserID
	Role   Role
}
