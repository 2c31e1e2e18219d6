package testutil

import (
	"net/http"

	"github.com/dalemusser/activityhub/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID       string
	Username string
	Role     string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:       "u-admin",
		Username: "testadmin",
		Role:     "admin",
	}
}

// RegularUser returns a TestUser with the regular user role.
func RegularUser() TestUser {
	return TestUser{
		ID:       "u-member",
		Username: "testuser",
		Role:     "user",
	}
}

// AsUser injects the test user into the request context, simulating
// what the token middleware does for an authenticated request.
func AsUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	})
}
