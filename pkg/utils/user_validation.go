package utils

import (
	"regexp"
	"strings"
)

const (
	MinUsernameLength = 2
	MaxUsernameLength = 30
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}'" \-+.]+$`)

	invalidSlugChars = regexp.MustCompile(`[^a-z0-9\p{L}\p{N}\-_]`)
	collapseDashes   = regexp.MustCompile(`-+`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidateUsername checks length and charset. It deliberately allows inner
// spaces since auto-renamed usernames carry a space-separated suffix.
func ValidateUsername(username string) bool {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return false
	}
	if username != strings.TrimSpace(username) {
		return false
	}
	return usernameRegex.MatchString(username)
}

// Slugify derives the URL-safe form of a username: lower-cased, spaces and
// disallowed characters folded into single dashes.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = invalidSlugChars.ReplaceAllString(s, "-")
	s = collapseDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
