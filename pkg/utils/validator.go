package utils

import (
	"fmt"
	"regexp"
)

var (
	actorIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._\-]{1,64}$`)
	ulidPattern    = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateActorID validates an actor identifier from the request headers
func ValidateActorID(id string) error {
	if !actorIDPattern.MatchString(id) {
		return fmt.Errorf("invalid actor ID format: %s", id)
	}
	return nil
}

// ValidateULID validates a ULID-formatted resource identifier
func ValidateULID(id string) error {
	if !ulidPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier format: %s", id)
	}
	return nil
}

// SanitizeString removes control characters from free-text input
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
