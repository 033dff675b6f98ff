package model

import "github.com/google/uuid"

// Role codes as constants
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleCashier = "cashier"
)

// User represents an authenticated user as returned by the backend.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// IsAdmin reports whether the user may see admin-only views. This gates
// visibility only; the backend enforces actual authorization.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the terminal's authenticated state. One session at a time;
// created on login or restored from local storage, destroyed on logout.
type Session struct {
	User User `json:"user"`
}
