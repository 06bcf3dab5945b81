// internal/domain/models/validation.go
package models

import (
	"errors"
	"regexp"
	"strings"
)

// ValidationError reports a record that breaks a write-time invariant.
// Message is user-facing and safe to return to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// RequestStatus is the two-state lifecycle shared by contacts and travel requests.
type RequestStatus string

const (
	StatusNew       RequestStatus = "new"
	StatusProcessed RequestStatus = "processed"
)

// IsValidRequestStatus reports whether s is "new" or "processed".
func IsValidRequestStatus(s string) bool {
	return s == string(StatusNew) || s == string(StatusProcessed)
}
