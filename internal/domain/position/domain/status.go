// Package domain provides the core domain model for tracked job applications.
package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Status represents the stage of a position in the application pipeline.
// This is a value object in DDD terms.
type Status string

const (
	// StatusCvSent indicates the application was submitted.
	StatusCvSent Status = "CvSent"
	// StatusPhoneScreenScheduled indicates a recruiter screen is booked.
	StatusPhoneScreenScheduled Status = "PhoneScreenScheduled"
	// StatusTechnicalInterview indicates the technical rounds started.
	StatusTechnicalInterview Status = "TechnicalInterview"
	// StatusOfferReceived indicates an offer was extended.
	StatusOfferReceived Status = "OfferReceived"
	// StatusRejected indicates the company declined.
	StatusRejected Status = "Rejected"
	// StatusWithdrawn indicates the applicant stepped out.
	StatusWithdrawn Status = "Withdrawn"
)

// AllStatuses returns all valid statuses in pipeline order.
func AllStatuses() []Status {
	return []Status{
		StatusCvSent,
		StatusPhoneScreenScheduled,
		StatusTechnicalInterview,
		StatusOfferReceived,
		StatusRejected,
		StatusWithdrawn,
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the enumerated values.
func (s Status) IsValid() bool {
	switch s {
	case StatusCvSent, StatusPhoneScreenScheduled, StatusTechnicalInterview,
		StatusOfferReceived, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no move back into active pursuit is possible.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// IsActive returns true if the application is still being pursued.
func (s Status) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanTransitionTo returns true if moving to target is permitted.
// The reflexive move is always permitted.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, forbidden := range forbiddenTransitions()[s] {
		if forbidden == target {
			return false
		}
	}
	return true
}

// AllowedTargets returns the statuses reachable in one move, excluding s itself.
func (s Status) AllowedTargets() []Status {
	var targets []Status
	for _, target := range AllStatuses() {
		if target != s && s.CanTransitionTo(target) {
			targets = append(targets, target)
		}
	}
	return targets
}

// forbiddenTransitions lists, per source status, the targets that may not be reached.
// Anything not listed is allowed.
func forbiddenTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusCvSent:               {},
		StatusPhoneScreenScheduled: {StatusCvSent},
		StatusTechnicalInterview:   {StatusCvSent, StatusPhoneScreenScheduled},
		StatusOfferReceived:        {StatusCvSent, StatusPhoneScreenScheduled, StatusTechnicalInterview},
		StatusRejected: {
			StatusCvSent, StatusPhoneScreenScheduled, StatusTechnicalInterview,
			StatusOfferReceived, StatusWithdrawn,
		},
		StatusWithdrawn: {
			StatusCvSent, StatusPhoneScreenScheduled, StatusTechnicalInterview,
			StatusOfferReceived, StatusRejected,
		},
	}
}

// ParseStatus parses a status name. Matching ignores case, spaces, dashes
// and underscores, so "phone-screen-scheduled" resolves to PhoneScreenScheduled.
func ParseStatus(s string) (Status, error) {
	key := normalizeStatusKey(s)
	for _, status := range AllStatuses() {
		if normalizeStatusKey(string(status)) == key {
			return status, nil
		}
	}
	return "", NewInvalidStatusError(s)
}

func normalizeStatusKey(s string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(s)))
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusCvSent:
		return "CV sent"
	case StatusPhoneScreenScheduled:
		return "Phone screen scheduled"
	case StatusTechnicalInterview:
		return "Technical interview"
	case StatusOfferReceived:
		return "Offer received"
	case StatusRejected:
		return "Rejected"
	case StatusWithdrawn:
		return "Withdrawn"
	default:
		return "Unknown"
	}
}

// NewInvalidStatusError reports a value that is not one of the enumerated statuses.
func NewInvalidStatusError(value string) *apperrors.Error {
	return apperrors.Domain(apperrors.CodeInvalidStatus, fmt.Sprintf("Invalid status: %q", value)).
		WithDetail("value", value)
}
