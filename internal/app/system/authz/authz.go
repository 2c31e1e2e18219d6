// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/app/system/normalize"
)

// UserCtx returns the user's role (lowercased), username, user ID, and a
// found flag. If no user is present in context it returns
// "visitor", "", "", false, so callers can trust that ok=true means a
// valid, authenticated user.
func UserCtx(r *http.Request) (role string, username string, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", "", false
	}
	return normalize.Role(user.Role), user.Username, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsUser reports whether the current request's user holds the regular
// user role.
func IsUser(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "user"
}

// CanManageActivities reports whether the current user can create, edit,
// or delete activities. Only admins can.
func CanManageActivities(r *http.Request) bool {
	return IsAdmin(r)
}

// CanViewParticipants reports whether the current user may read an
// activity's roster. Admins only; regular users see their own
// registrations through their activity list instead.
func CanViewParticipants(r *http.Request) bool {
	return IsAdmin(r)
}
