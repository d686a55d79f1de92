// Package validation contains pure request validation functions.
// Handlers call these before touching the store; each returns the offending
// field name and a human-readable message, or empty strings when valid.
package validation

import (
	"unicode/utf8"

	"github.com/inkletapp/inklet/internal/core/domain"
)

// ValidateCreatePostFields validates required fields for post creation.
// Title is expected to be trimmed by the caller.
func ValidateCreatePostFields(title, content string) (field, message string) {
	if title == "" {
		return "title", "Title and content are required"
	}
	if content == "" {
		return "content", "Title and content are required"
	}
	return ValidateTitle(title)
}

// ValidateTitle checks the title length cap. Used on create and again on
// update when a new title is supplied.
func ValidateTitle(title string) (field, message string) {
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "title", "Title cannot exceed 200 characters"
	}
	return "", ""
}
