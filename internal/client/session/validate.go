package session

import (
	"fmt"
	"regexp"
	"strings"

	"secureshare/internal/common"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	tagRegex   = regexp.MustCompile(`<[^>]*>`)
)

// SanitizeInput trims surrounding whitespace and strips markup-looking
// fragments from free-text input before it reaches any other layer.
func SanitizeInput(s string) string {
	return tagRegex.ReplaceAllString(strings.TrimSpace(s), "")
}

// validateCredentials checks login input locally before any network call.
// Failures are validation errors, surfaced inline and never sent over the
// wire.
func validateCredentials(email, password string) (string, error) {
	email = SanitizeInput(email)
	if email == "" || !emailRegex.MatchString(email) {
		return "", fmt.Errorf("%q: %w", email, common.ErrMalformedEmail)
	}
	if password == "" {
		return "", common.ErrEmptyPassword
	}
	return email, nil
}

// ValidatePasswordStrength enforces the registration password policy:
// at least 8 characters with an uppercase letter, a lowercase letter,
// a digit and a special character.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("too short: %w", common.ErrWeakPassword)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return common.ErrWeakPassword
	}
	return nil
}
