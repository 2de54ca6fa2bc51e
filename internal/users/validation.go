package users

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, name, password string) error {
	if email == "" || strings.TrimSpace(name) == "" || password == "" {
		return invalid("", "Email, name, and password are required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLength {
		return invalid("name", "Name must be at least 2 characters long")
	}
	return validatePassword(password)
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return invalid("email", "Please enter a valid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid("password", "Password must be at least 6 characters long")
	}
	return nil
}
