// Package ports defines the interfaces (ports) for the position bounded context.
package ports

import (
	"context"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
)

// PositionRepository persists positions. Every method takes an optional
// bearer token; an empty token means "use the stored session". A
// repository that needs a token and cannot resolve one fails with an
// unauthorized error before any network attempt.
type PositionRepository interface {
	// GetPositions returns the caller's positions, excluding soft-deleted ones.
	GetPositions(ctx context.Context, token string) ([]*domain.Position, error)

	// CreatePosition builds and persists a new position from input.
	CreatePosition(ctx context.Context, input domain.CreatePositionInput, token string) (*domain.Position, error)

	// GetPositionByID loads a position. Missing or soft-deleted positions
	// yield a not-found error.
	GetPositionByID(ctx context.Context, id string, token string) (*domain.Position, error)

	// Save persists the current state of an existing position.
	Save(ctx context.Context, position *domain.Position, token string) error

	// Delete soft-deletes a position.
	Delete(ctx context.Context, id string, token string) error
}

// CommentRepository persists comments, scoped by position.
type CommentRepository interface {
	// GetComments returns the comments of a position, newest first.
	GetComments(ctx context.Context, positionID string, token string) ([]*domain.Comment, error)

	// CreateComment adds a comment to a position.
	CreateComment(ctx context.Context, positionID string, input domain.CreateCommentInput, token string) (*domain.Comment, error)

	// UpdateComment replaces the body of a comment.
	UpdateComment(ctx context.Context, positionID, commentID string, input domain.UpdateCommentInput, token string) (*domain.Comment, error)

	// DeleteComment removes a comment.
	DeleteComment(ctx context.Context, positionID, commentID string, token string) error
}
