package app

import (
	"context"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

// CommentService is a thin pass-through over the comment repository that
// validates bodies before the repository sees them.
type CommentService struct {
	repo ports.CommentRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(repo ports.CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

// GetComments returns the comments of a position.
func (s *CommentService) GetComments(ctx context.Context, positionID string, token string) ([]*domain.Comment, error) {
	if err := requireID(positionID, ErrPositionIDRequired); err != nil {
		return nil, err
	}
	return s.repo.GetComments(ctx, positionID, token)
}

// CreateComment adds a comment to a position.
func (s *CommentService) CreateComment(ctx context.Context, positionID string, input domain.CreateCommentInput, token string) (*domain.Comment, error) {
	if err := requireID(positionID, ErrPositionIDRequired); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateComment(ctx, positionID, input, token)
}

// UpdateComment replaces the body of a comment.
func (s *CommentService) UpdateComment(ctx context.Context, positionID, commentID string, input domain.UpdateCommentInput, token string) (*domain.Comment, error) {
	if err := requireID(positionID, ErrPositionIDRequired); err != nil {
		return nil, err
	}
	if err := requireID(commentID, ErrCommentIDRequired); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateComment(ctx, positionID, commentID, input, token)
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, positionID, commentID string, token string) error {
	if err := requireID(positionID, ErrPositionIDRequired); err != nil {
		return err
	}
	if err := requireID(commentID, ErrCommentIDRequired); err != nil {
		return err
	}
	return s.repo.DeleteComment(ctx, positionID, commentID, token)
}
