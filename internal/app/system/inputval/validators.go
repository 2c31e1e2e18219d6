// internal/app/system/inputval/validators.go
package inputval

import (
	"strings"
	"unicode"
)

const (
	minPasswordLen = 8
	minUsernameLen = 3
	maxUsernameLen = 30
	maxTitleLen    = 200
	maxTextLen     = 2000
)

// IsValidPassword reports whether the password meets the minimum policy:
// at least 8 characters with at least one letter and one digit.
func IsValidPassword(password string) bool {
	if len(password) < minPasswordLen {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// IsValidUsername reports whether the username is 3-30 characters of
// letters, digits, underscores, or hyphens.
func IsValidUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// IsValidActivityTitle reports whether the title is present and within
// the length limit.
func IsValidActivityTitle(title string) bool {
	title = strings.TrimSpace(title)
	return title != "" && len(title) <= maxTitleLen
}

// IsValidActivityText reports whether a free-text field (description,
// location) fits the length limit. Empty is fine.
func IsValidActivityText(text string) bool {
	return len(strings.TrimSpace(text)) <= maxTextLen
}

// IsValidMaxParticipants reports whether the capacity is at least one.
func IsValidMaxParticipants(n int) bool {
	return n >= 1
}
