// internal/app/system/inputval/inputval.go

// Package inputval holds boundary validation for submitted fields.
// Handlers call these before anything reaches a store; the rules say
// whether input is acceptable, never mutate it.
package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether the string is a plausible email address.
// Display-name forms ("Name <a@b.c>") are rejected; single-label domains
// are allowed for dev/test environments.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}
