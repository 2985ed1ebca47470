// Package forms holds the waitlist and gift-claim controllers.
package forms

import (
	"errors"
	"strings"
)

var (
	// ErrSubmissionInFlight is returned when a form is submitted while its
	// previous submission has not completed.
	ErrSubmissionInFlight = errors.New("forms: submission already in progress")
	// ErrModalClosed is returned when a claim is submitted with the gift modal closed.
	ErrModalClosed = errors.New("forms: gift modal is closed")
)

// NormalizeEmail trims surrounding whitespace from raw input.
func NormalizeEmail(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidEmail is the minimal shape check applied before any store call:
// the address must be non-empty and contain an '@'.
func ValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// emailDomain returns the part after the last '@' for logging.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
