// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
	"time"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]{3,32}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidateUsername checks the login name format used for lab accounts
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ParseDueDate parses a YYYY-MM-DD due date string.
func ParseDueDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// DueDateInPast reports whether due falls before today's date (server time).
// Comparison is by calendar day, so a due date of today is allowed.
func DueDateInPast(due time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	return dueDay.Before(today)
}
