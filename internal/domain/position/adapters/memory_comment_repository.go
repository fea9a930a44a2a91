package adapters

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// MemoryCommentRepository implements CommentRepository in process memory.
// New comments are prepended so listings are newest first.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments []domain.CommentPrimitives
	cfg      memoryConfig
}

// Ensure MemoryCommentRepository implements the interface.
var _ ports.CommentRepository = (*MemoryCommentRepository)(nil)

// NewMemoryCommentRepository creates an empty in-memory repository.
func NewMemoryCommentRepository(opts ...MemoryOption) *MemoryCommentRepository {
	return &MemoryCommentRepository{cfg: newMemoryConfig(opts)}
}

// Seed appends comments as-is.
func (r *MemoryCommentRepository) Seed(comments ...*domain.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range comments {
		r.comments = append(r.comments, c.ToPrimitives())
	}
}

// GetComments returns the comments of a position.
func (r *MemoryCommentRepository) GetComments(ctx context.Context, positionID string, _ string) ([]*domain.Comment, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.GetComments"); err != nil {
		return nil, err
	}
	if err := r.requirePosition("memory.GetComments", positionID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Comment, 0)
	for _, p := range r.comments {
		if p.PositionID != positionID {
			continue
		}
		c, err := domain.CommentFromPrimitives(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateComment validates and prepends a comment.
func (r *MemoryCommentRepository) CreateComment(ctx context.Context, positionID string, input domain.CreateCommentInput, _ string) (*domain.Comment, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.CreateComment"); err != nil {
		return nil, err
	}
	if err := r.requirePosition("memory.CreateComment", positionID); err != nil {
		return nil, err
	}

	t := r.cfg.clock.Now()
	c, err := domain.CommentFromPrimitives(domain.CommentPrimitives{
		ID:         uuid.NewString(),
		PositionID: positionID,
		UserID:     r.cfg.userID,
		Body:       input.Body,
		CreatedAt:  t,
		UpdatedAt:  t,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append([]domain.CommentPrimitives{c.ToPrimitives()}, r.comments...)
	return c, nil
}

// UpdateComment rebuilds a comment with a new body and updatedAt.
func (r *MemoryCommentRepository) UpdateComment(ctx context.Context, positionID, commentID string, input domain.UpdateCommentInput, _ string) (*domain.Comment, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.UpdateComment"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(positionID, commentID)
	if i < 0 {
		return nil, commentNotFound("memory.UpdateComment", commentID)
	}
	current, err := domain.CommentFromPrimitives(r.comments[i])
	if err != nil {
		return nil, err
	}
	next, err := current.WithBody(input.Body, r.cfg.clock.Now())
	if err != nil {
		return nil, err
	}
	r.comments[i] = next.ToPrimitives()
	return next, nil
}

// DeleteComment removes a comment permanently.
func (r *MemoryCommentRepository) DeleteComment(ctx context.Context, positionID, commentID string, _ string) error {
	if err := r.cfg.simulateLatency(ctx, "memory.DeleteComment"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(positionID, commentID)
	if i < 0 {
		return commentNotFound("memory.DeleteComment", commentID)
	}
	r.comments = append(r.comments[:i], r.comments[i+1:]...)
	return nil
}

// Len returns the number of stored comments across all positions.
func (r *MemoryCommentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.comments)
}

func (r *MemoryCommentRepository) indexOf(positionID, commentID string) int {
	for i, c := range r.comments {
		if c.ID == commentID && c.PositionID == positionID {
			return i
		}
	}
	return -1
}

func (r *MemoryCommentRepository) requirePosition(op, positionID string) error {
	if r.cfg.positions == nil || r.cfg.positions.exists(positionID) {
		return nil
	}
	return positionNotFound(op, positionID)
}

func commentNotFound(op, id string) *apperrors.Error {
	return apperrors.NotFound(op, "Comment not found").WithDetail("id", id)
}
