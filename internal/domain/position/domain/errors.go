package domain

import (
	"fmt"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Sentinels for errors.Is matching on domain error codes.
var (
	// ErrMissingCompany indicates a blank company name.
	ErrMissingCompany = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeMissingCompany}

	// ErrMissingRoleTitle indicates a blank role title.
	ErrMissingRoleTitle = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeMissingRoleTitle}

	// ErrMissingCommentBody indicates a blank comment.
	ErrMissingCommentBody = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeMissingBody}

	// ErrInvalidDate indicates an unparseable applied-on date.
	ErrInvalidDate = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeInvalidDate}

	// ErrInvalidURL indicates a non-empty URL without scheme or host.
	ErrInvalidURL = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeInvalidURL}

	// ErrInvalidStatus indicates a value outside the status enum.
	ErrInvalidStatus = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeInvalidStatus}

	// ErrInvalidStatusTransition indicates a move listed in the forbidden table.
	ErrInvalidStatusTransition = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodeInvalidTransition}

	// ErrPositionLocked indicates the position can no longer be edited.
	ErrPositionLocked = &apperrors.Error{Kind: apperrors.KindDomain, Code: apperrors.CodePositionLocked}
)

func newMissingCompanyError() *apperrors.Error {
	return apperrors.Domain(apperrors.CodeMissingCompany, "Company is required")
}

func newMissingRoleTitleError() *apperrors.Error {
	return apperrors.Domain(apperrors.CodeMissingRoleTitle, "Role title is required")
}

func newMissingCommentBodyError() *apperrors.Error {
	return apperrors.Domain(apperrors.CodeMissingBody, "Comment body is required")
}

func newInvalidDateError(value string) *apperrors.Error {
	return apperrors.Domain(apperrors.CodeInvalidDate, "Invalid date format").WithDetail("value", value)
}

func newInvalidURLError(value string) *apperrors.Error {
	return apperrors.Domain(apperrors.CodeInvalidURL, "Invalid URL format").WithDetail("value", value)
}

func newPositionLockedError(p *Position) *apperrors.Error {
	return apperrors.Domain(apperrors.CodePositionLocked, "Position cannot be edited").
		WithDetail("id", p.id).
		WithDetail("status", string(p.status)).
		WithDetail("deleted", p.deleted)
}

// NewInvalidStatusTransitionError reports a forbidden move between two statuses.
func NewInvalidStatusTransitionError(from, to Status) *apperrors.Error {
	return apperrors.Domain(apperrors.CodeInvalidTransition, fmt.Sprintf("Cannot transition from %s to %s", from, to)).
		WithDetail("from", string(from)).
		WithDetail("to", string(to))
}
