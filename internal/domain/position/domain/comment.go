package domain

import "time"

// Comment is a note attached to a position. It has no mutators; an edit
// produces a new Comment with the same identity via WithBody.
type Comment struct {
	id         string
	positionID string
	userID     string
	body       string
	createdAt  time.Time
	updatedAt  time.Time
}

// CommentPrimitives is the flat, serializable form of a Comment.
type CommentPrimitives struct {
	ID         string    `json:"id"`
	PositionID string    `json:"positionId"`
	UserID     string    `json:"userId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentFromPrimitives reconstructs a Comment, rejecting a blank body.
func CommentFromPrimitives(p CommentPrimitives) (*Comment, error) {
	if err := validateCommentBody(p.Body); err != nil {
		return nil, err
	}
	return &Comment{
		id:         p.ID,
		positionID: p.PositionID,
		userID:     p.UserID,
		body:       p.Body,
		createdAt:  p.CreatedAt,
		updatedAt:  p.UpdatedAt,
	}, nil
}

// ID returns the comment ID.
func (c *Comment) ID() string { return c.id }

// PositionID returns the owning position ID.
func (c *Comment) PositionID() string { return c.positionID }

// UserID returns the author ID.
func (c *Comment) UserID() string { return c.userID }

// Body returns the comment text.
func (c *Comment) Body() string { return c.body }

// CreatedAt returns the creation timestamp.
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last edit timestamp.
func (c *Comment) UpdatedAt() time.Time { return c.updatedAt }

// WithBody returns a copy with a new body and updatedAt.
func (c *Comment) WithBody(body string, at time.Time) (*Comment, error) {
	p := c.ToPrimitives()
	p.Body = body
	p.UpdatedAt = at
	return CommentFromPrimitives(p)
}

// ToPrimitives returns the flat form of the comment.
func (c *Comment) ToPrimitives() CommentPrimitives {
	return CommentPrimitives{
		ID:         c.id,
		PositionID: c.positionID,
		UserID:     c.userID,
		Body:       c.body,
		CreatedAt:  c.createdAt,
		UpdatedAt:  c.updatedAt,
	}
}
