package domain

import (
	"strings"
	"time"
)

// CreatePositionInput carries the fields a caller supplies for a new position.
// Identity and audit fields are assigned by the repository.
type CreatePositionInput struct {
	Company        string `json:"company"`
	RoleTitle      string `json:"roleTitle"`
	Description    string `json:"description"`
	AppliedOn      string `json:"appliedOn"`
	URL            string `json:"url"`
	InitialComment string `json:"initialComment"`
	Status         Status `json:"status,omitempty"`
}

// WithDefaults returns a copy with an empty status set to CvSent.
func (in CreatePositionInput) WithDefaults() CreatePositionInput {
	if in.Status == "" {
		in.Status = StatusCvSent
	}
	return in
}

// Validate runs the same checks as PositionFromPrimitives on the defaulted input.
func (in CreatePositionInput) Validate() error {
	_, err := PositionFromPrimitives(in.WithDefaults().primitives())
	return err
}

// NewPosition builds a fresh position from the input with the given identity
// and creation time. The input is defaulted before validation.
func (in CreatePositionInput) NewPosition(id, userID string, at time.Time) (*Position, error) {
	p := in.WithDefaults().primitives()
	p.ID = id
	p.UserID = userID
	p.CreatedAt = at
	p.UpdatedAt = at
	return PositionFromPrimitives(p)
}

func (in CreatePositionInput) primitives() PositionPrimitives {
	return PositionPrimitives{
		Company:        in.Company,
		RoleTitle:      in.RoleTitle,
		Description:    in.Description,
		AppliedOn:      in.AppliedOn,
		URL:            in.URL,
		InitialComment: in.InitialComment,
		Status:         in.Status,
	}
}

// PositionChanges is a partial update. A nil field means "leave unchanged".
type PositionChanges struct {
	Company        *string `json:"company,omitempty"`
	RoleTitle      *string `json:"roleTitle,omitempty"`
	Description    *string `json:"description,omitempty"`
	AppliedOn      *string `json:"appliedOn,omitempty"`
	URL            *string `json:"url,omitempty"`
	InitialComment *string `json:"initialComment,omitempty"`
	Status         *Status `json:"status,omitempty"`
}

// IsEmpty reports whether no field is set.
func (c PositionChanges) IsEmpty() bool {
	return c.Company == nil && c.RoleTitle == nil && c.Description == nil &&
		c.AppliedOn == nil && c.URL == nil && c.InitialComment == nil && c.Status == nil
}

// CreateCommentInput carries the body of a new comment.
type CreateCommentInput struct {
	Body string `json:"body"`
}

// Validate checks the body is not blank.
func (in CreateCommentInput) Validate() error {
	return validateCommentBody(in.Body)
}

// UpdateCommentInput carries the replacement body of a comment.
type UpdateCommentInput struct {
	Body string `json:"body"`
}

// Validate checks the body is not blank.
func (in UpdateCommentInput) Validate() error {
	return validateCommentBody(in.Body)
}

func validateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return newMissingCommentBodyError()
	}
	return nil
}
