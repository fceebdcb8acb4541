package domain

import "time"

// Role represents a user's access level.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleClient Role = "Client"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleClient
}

// User represents an account in the system.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
