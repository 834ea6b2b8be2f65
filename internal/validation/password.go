package validation

import (
	"unicode"
)

const (
	MinPasswordLength = 8
	// bcrypt silently truncates passwords longer than 72 bytes
	MaxPasswordLength = 72
)

// ValidatePassword requires a minimum length and at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return newError("Password must be at least 8 characters long")
	}

	if len(password) > MaxPasswordLength {
		return newError("Password must not exceed 72 characters")
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

	if !hasLetter || !hasDigit {
		return newError("Password must contain both letters and numbers")
	}

	return nil
}
