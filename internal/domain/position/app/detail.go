package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

// GetPositionDetailOutput is a position together with its comments.
type GetPositionDetailOutput struct {
	Position *domain.Position
	Comments []*domain.Comment
	// AllowedTargets lists the statuses the position can move to next.
	AllowedTargets []domain.Status
}

// GetPositionDetailUseCase loads a position and its comments concurrently.
type GetPositionDetailUseCase struct {
	positions ports.PositionRepository
	comments  ports.CommentRepository
}

// NewGetPositionDetailUseCase creates a new GetPositionDetailUseCase.
func NewGetPositionDetailUseCase(positions ports.PositionRepository, comments ports.CommentRepository) *GetPositionDetailUseCase {
	return &GetPositionDetailUseCase{
		positions: positions,
		comments:  comments,
	}
}

// Execute fetches both aggregates. The first failure cancels the other fetch
// and is returned unchanged.
func (uc *GetPositionDetailUseCase) Execute(ctx context.Context, id string, token string) (*GetPositionDetailOutput, error) {
	if err := requireID(id, ErrPositionIDRequired); err != nil {
		return nil, err
	}

	var (
		pos      *domain.Position
		comments []*domain.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pos, err = uc.positions.GetPositionByID(gctx, id, token)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = uc.comments.GetComments(gctx, id, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &GetPositionDetailOutput{
		Position:       pos,
		Comments:       comments,
		AllowedTargets: pos.Status().AllowedTargets(),
	}, nil
}
