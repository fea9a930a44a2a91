// Package app provides application services (use cases) for tracked positions.
package app

import (
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Input validation errors for identifiers. Domain and infrastructure errors
// are never produced here; they pass through the services unchanged.
var (
	// ErrPositionIDRequired is returned when a position ID is empty.
	ErrPositionIDRequired = apperrors.Validation("app", "position ID is required")

	// ErrCommentIDRequired is returned when a comment ID is empty.
	ErrCommentIDRequired = apperrors.Validation("app", "comment ID is required")
)

func requireID(id string, errIfEmpty error) error {
	if id == "" {
		return errIfEmpty
	}
	return nil
}
