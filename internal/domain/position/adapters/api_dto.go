package adapters

import (
	"strings"
	"time"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// timestampLayouts are the encodings accepted from the API, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// PositionDTO is a position as transmitted by the API.
type PositionDTO struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Company        string  `json:"company"`
	RoleTitle      string  `json:"role_title"`
	Description    string  `json:"description"`
	AppliedOn      string  `json:"applied_on"`
	URL            string  `json:"url"`
	InitialComment string  `json:"initial_comment"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	DeletedAt      *string `json:"deleted_at"`
	Deleted        bool    `json:"deleted"`
}

// ToDomain converts the DTO into a validated Position.
func (d PositionDTO) ToDomain() (*domain.Position, error) {
	createdAt, err := parseTimestamp(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	var deletedAt *time.Time
	if d.DeletedAt != nil && *d.DeletedAt != "" {
		t, err := parseTimestamp(*d.DeletedAt)
		if err != nil {
			return nil, err
		}
		deletedAt = &t
	}

	return domain.PositionFromPrimitives(domain.PositionPrimitives{
		ID:             d.ID,
		UserID:         d.UserID,
		Company:        d.Company,
		RoleTitle:      d.RoleTitle,
		Description:    d.Description,
		AppliedOn:      d.AppliedOn,
		URL:            d.URL,
		InitialComment: d.InitialComment,
		Status:         domain.Status(d.Status),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		Deleted:        d.Deleted,
	})
}

// NewPositionDTO converts a Position into its wire form.
func NewPositionDTO(p *domain.Position) PositionDTO {
	prim := p.ToPrimitives()
	dto := PositionDTO{
		ID:             prim.ID,
		UserID:         prim.UserID,
		Company:        prim.Company,
		RoleTitle:      prim.RoleTitle,
		Description:    prim.Description,
		AppliedOn:      prim.AppliedOn,
		URL:            prim.URL,
		InitialComment: prim.InitialComment,
		Status:         string(prim.Status),
		CreatedAt:      formatTimestamp(prim.CreatedAt),
		UpdatedAt:      formatTimestamp(prim.UpdatedAt),
		Deleted:        prim.Deleted,
	}
	if prim.DeletedAt != nil {
		s := formatTimestamp(*prim.DeletedAt)
		dto.DeletedAt = &s
	}
	return dto
}

// createPositionDTO is the body of POST /positions.
type createPositionDTO struct {
	Company        string `json:"company"`
	RoleTitle      string `json:"role_title"`
	Description    string `json:"description"`
	AppliedOn      string `json:"applied_on"`
	URL            string `json:"url"`
	InitialComment string `json:"initial_comment"`
	Status         string `json:"status"`
}

func newCreatePositionDTO(in domain.CreatePositionInput) createPositionDTO {
	return createPositionDTO{
		Company:        in.Company,
		RoleTitle:      in.RoleTitle,
		Description:    in.Description,
		AppliedOn:      in.AppliedOn,
		URL:            in.URL,
		InitialComment: in.InitialComment,
		Status:         string(in.Status),
	}
}

// updatePositionDTO is the body of PUT /positions/{id}. It carries the
// editable fields only.
type updatePositionDTO struct {
	Company        string `json:"company"`
	RoleTitle      string `json:"role_title"`
	Description    string `json:"description"`
	AppliedOn      string `json:"applied_on"`
	URL            string `json:"url"`
	InitialComment string `json:"initial_comment"`
	Status         string `json:"status"`
}

func newUpdatePositionDTO(p *domain.Position) updatePositionDTO {
	return updatePositionDTO{
		Company:        p.Company(),
		RoleTitle:      p.RoleTitle(),
		Description:    p.Description(),
		AppliedOn:      p.AppliedOn().Value(),
		URL:            p.URL().Value(),
		InitialComment: p.InitialComment(),
		Status:         string(p.Status()),
	}
}

// CommentDTO is a comment as transmitted by the API.
type CommentDTO struct {
	ID         string `json:"id"`
	PositionID string `json:"position_id"`
	UserID     string `json:"user_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ToDomain converts the DTO into a validated Comment.
func (d CommentDTO) ToDomain() (*domain.Comment, error) {
	createdAt, err := parseTimestamp(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return domain.CommentFromPrimitives(domain.CommentPrimitives{
		ID:         d.ID,
		PositionID: d.PositionID,
		UserID:     d.UserID,
		Body:       d.Body,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	})
}

type commentBodyDTO struct {
	Body string `json:"body"`
}

// parseTimestamp accepts an empty string as the zero time.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.Infrastructure("api.parseTimestamp", apperrors.CodeFetch,
		"invalid timestamp in response", 0).WithDetail("value", s)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
