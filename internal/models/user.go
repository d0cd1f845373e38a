package models

import "time"

// UserRole represents the available roles for role-gated access.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// Valid reports whether the role is a known value.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleOrganizer || r == RoleAdmin
}

// User represents an authenticatable account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// RoleAssignment maps a user to a role in the user_roles table.
// The application expects at most one row per user.
type RoleAssignment struct {
	ID     string   `db:"id" json:"id"`
	UserID string   `db:"user_id" json:"user_id"`
	Role   UserRole `db:"role" json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
