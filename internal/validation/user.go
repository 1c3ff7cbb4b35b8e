// Package validation provides input validation rules for user accounts and
// comment submissions.
package validation

import (
	"regexp"
	"strings"

	"kampus/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"me":            {},
	"messages":      {},
	"conversations": {},
	"universities":  {},
	"partners":      {},
	"users":         {},
	"search":        {},
	"ws":            {},
	"metrics":       {},
	"login":         {},
	"signup":        {},
}

// NormalizeUsername lowercases and trims a username. Usernames are stored and
// compared in this normalized form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks a normalized username against the account rules.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("username must be 3-20 characters and contain only lowercase letters, numbers, and underscores")
	}
	if username[0] == '_' || username[len(username)-1] == '_' {
		return models.NewValidationError("username cannot start or end with an underscore")
	}
	if _, exists := reservedUsernames[username]; exists {
		return models.NewValidationError("username is reserved")
	}
	return nil
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("invalid email format")
	}
	if len(email) > 254 {
		return models.NewValidationError("email must not exceed 254 characters")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return models.NewValidationError("password must not exceed 128 characters")
	}
	return nil
}

// ValidateDisplayName checks the free-text display name.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return models.NewValidationError("display name must be at least 2 characters long")
	}
	if len(trimmed) > 50 {
		return models.NewValidationError("display name must not exceed 50 characters")
	}
	return nil
}
