package domain

import (
	"strings"
	"time"
)

// Position is the aggregate root for a tracked job application.
// It owns field validation, the status transition graph and the edit guards.
type Position struct {
	// Identity
	id     string
	userID string

	// Fields
	company        string
	roleTitle      string
	description    string
	appliedOn      AppliedDate
	url            PositionURL
	initialComment string

	// State
	status  Status
	deleted bool

	// Timestamps
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// PositionPrimitives is the flat, serializable form of a Position.
type PositionPrimitives struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Company        string     `json:"company"`
	RoleTitle      string     `json:"roleTitle"`
	Description    string     `json:"description"`
	AppliedOn      string     `json:"appliedOn"`
	URL            string     `json:"url"`
	InitialComment string     `json:"initialComment"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	Deleted        bool       `json:"deleted"`
}

// PositionFromPrimitives reconstructs a Position, validating every field.
// Any status from the enum is accepted here; only creation defaults to CvSent.
func PositionFromPrimitives(p PositionPrimitives) (*Position, error) {
	appliedOn, err := NewAppliedDate(p.AppliedOn)
	if err != nil {
		return nil, err
	}
	u, err := NewPositionURL(p.URL)
	if err != nil {
		return nil, err
	}
	if !p.Status.IsValid() {
		return nil, NewInvalidStatusError(string(p.Status))
	}

	pos := &Position{
		id:             p.ID,
		userID:         p.UserID,
		company:        p.Company,
		roleTitle:      p.RoleTitle,
		description:    p.Description,
		appliedOn:      appliedOn,
		url:            u,
		initialComment: p.InitialComment,
		status:         p.Status,
		deleted:        p.Deleted,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
		deletedAt:      copyTime(p.DeletedAt),
	}
	if err := pos.validate(); err != nil {
		return nil, err
	}
	return pos, nil
}

// validate checks the invariants not already held by value objects.
func (p *Position) validate() error {
	if strings.TrimSpace(p.company) == "" {
		return newMissingCompanyError()
	}
	if strings.TrimSpace(p.roleTitle) == "" {
		return newMissingRoleTitleError()
	}
	return nil
}

// ID returns the position ID.
func (p *Position) ID() string {
	return p.id
}

// UserID returns the owner ID.
func (p *Position) UserID() string {
	return p.userID
}

// Company returns the company name.
func (p *Position) Company() string {
	return p.company
}

// RoleTitle returns the role title.
func (p *Position) RoleTitle() string {
	return p.roleTitle
}

// Description returns the free-form description.
func (p *Position) Description() string {
	return p.description
}

// AppliedOn returns the application date.
func (p *Position) AppliedOn() AppliedDate {
	return p.appliedOn
}

// URL returns the posting link.
func (p *Position) URL() PositionURL {
	return p.url
}

// InitialComment returns the note recorded at creation.
func (p *Position) InitialComment() string {
	return p.initialComment
}

// Status returns the current status.
func (p *Position) Status() Status {
	return p.status
}

// IsDeleted returns true if the position was soft-deleted.
func (p *Position) IsDeleted() bool {
	return p.deleted
}

// CreatedAt returns the creation timestamp.
func (p *Position) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns the last modification timestamp.
func (p *Position) UpdatedAt() time.Time {
	return p.updatedAt
}

// DeletedAt returns the deletion timestamp, or nil.
func (p *Position) DeletedAt() *time.Time {
	return copyTime(p.deletedAt)
}

// CanBeEdited reports whether Update is allowed.
// Only Rejected locks the fields; a Withdrawn position stays editable.
func (p *Position) CanBeEdited() bool {
	return !p.deleted && p.status != StatusRejected
}

// AdvanceStatus moves the position to target and stamps updatedAt with at.
// Moving to the current status is a no-op and leaves updatedAt untouched.
func (p *Position) AdvanceStatus(target Status, at time.Time) error {
	if !target.IsValid() {
		return NewInvalidStatusError(string(target))
	}
	if target == p.status {
		return nil
	}
	if p.deleted {
		return newPositionLockedError(p)
	}
	if !p.status.CanTransitionTo(target) {
		return NewInvalidStatusTransitionError(p.status, target)
	}

	p.status = target
	p.updatedAt = at
	return nil
}

// Update applies the fields present in changes. The changes are applied to a
// copy and committed only when the copy validates, so a failed update leaves
// the position untouched. Status is ignored; use AdvanceStatus.
func (p *Position) Update(changes PositionChanges, at time.Time) error {
	if !p.CanBeEdited() {
		return newPositionLockedError(p)
	}

	next := *p
	if changes.Company != nil {
		next.company = *changes.Company
	}
	if changes.RoleTitle != nil {
		next.roleTitle = *changes.RoleTitle
	}
	if changes.Description != nil {
		next.description = *changes.Description
	}
	if changes.InitialComment != nil {
		next.initialComment = *changes.InitialComment
	}
	if changes.AppliedOn != nil {
		appliedOn, err := NewAppliedDate(*changes.AppliedOn)
		if err != nil {
			return err
		}
		next.appliedOn = appliedOn
	}
	if changes.URL != nil {
		u, err := NewPositionURL(*changes.URL)
		if err != nil {
			return err
		}
		next.url = u
	}
	if err := next.validate(); err != nil {
		return err
	}

	next.updatedAt = at
	*p = next
	return nil
}

// Delete soft-deletes the position at the given time. Calling it twice
// re-stamps the timestamps.
func (p *Position) Delete(at time.Time) {
	p.deleted = true
	p.deletedAt = &at
	p.updatedAt = at
}

// ToPrimitives returns the flat form of the position.
func (p *Position) ToPrimitives() PositionPrimitives {
	return PositionPrimitives{
		ID:             p.id,
		UserID:         p.userID,
		Company:        p.company,
		RoleTitle:      p.roleTitle,
		Description:    p.description,
		AppliedOn:      p.appliedOn.Value(),
		URL:            p.url.Value(),
		InitialComment: p.initialComment,
		Status:         p.status,
		CreatedAt:      p.createdAt,
		UpdatedAt:      p.updatedAt,
		DeletedAt:      copyTime(p.deletedAt),
		Deleted:        p.deleted,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
