// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes identifiers once, at the boundary.
// Stored keys and roster entries always hold the normalized form, so
// comparisons elsewhere are plain string equality — never re-coerced at
// the comparison site.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username lowercases and trims a username.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UserID canonicalizes a user identifier for roster and index keys.
// User IDs are generated lowercase; this guards identifiers that arrive
// from tokens or request bodies.
func UserID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ActivityID trims an activity identifier. Activity IDs are opaque but
// case-significant, so case is preserved.
func ActivityID(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
