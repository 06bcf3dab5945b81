// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import "strings"

// Email normalizes an email address by trimming whitespace and converting to lowercase.
// This is the canonical way to normalize emails before storage or comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a person's name by trimming whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status normalizes a status value by trimming whitespace and converting to lowercase.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category normalizes a blog category filter or value.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Source normalizes the origin recorded on a newsletter sign-up
// ("footer", "blog", "popup").
func Source(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
