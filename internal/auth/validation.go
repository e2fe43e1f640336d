package auth

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// ValidateEmail checks if an email has a valid format.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) < 255
}

// ValidatePassword checks the minimum password strength.
func ValidatePassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72
}

// ValidateUsername checks that a username is present and sane.
func ValidateUsername(username string) bool {
	return username != "" && len(username) < 255
}
