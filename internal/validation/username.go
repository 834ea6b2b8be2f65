package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 80
)

// ValidateUsername validates the login name chosen at registration
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if utf8.RuneCountInString(trimmed) < MinUsernameLength {
		return newError("Username must be at least 3 characters long")
	}

	if utf8.RuneCountInString(trimmed) > MaxUsernameLength {
		return newError("Username is too long (max 80 characters)")
	}

	if trimmed != username {
		return newError("Username must not start or end with whitespace")
	}

	return nil
}
