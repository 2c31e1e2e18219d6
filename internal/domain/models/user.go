// internal/domain/models/user.go
package models

import "time"

// User represents a registered account.
//
// NOTE:
//   - Activity enrollment is not embedded on User. Use the membership
//     index to discover a user's activities.
//   - PasswordHash is a bcrypt hash and is never serialized to JSON.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // "user" | "admin"
	CreatedAt time.Time `json:"created_at"`

	PasswordHash string `json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Roles assignable to a user. Role gates activity management and roster
// viewing; it does not affect registration eligibility.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
