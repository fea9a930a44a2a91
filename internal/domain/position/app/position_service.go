package app

import (
	"context"
	"time"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

// PositionService orchestrates the position repository and the Position
// aggregate: load, invoke the domain method, then persist.
type PositionService struct {
	repo  ports.PositionRepository
	clock ports.Clock
}

// PositionServiceOption configures a PositionService.
type PositionServiceOption func(*PositionService)

// WithServiceClock sets the clock that stamps edits and status changes.
// Share it with the repository so creation and edit times agree.
func WithServiceClock(clock ports.Clock) PositionServiceOption {
	return func(s *PositionService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

// NewPositionService creates a new PositionService.
func NewPositionService(repo ports.PositionRepository, opts ...PositionServiceOption) *PositionService {
	s := &PositionService{repo: repo, clock: utcClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPositions returns the positions visible to the caller.
func (s *PositionService) GetPositions(ctx context.Context, token string) ([]*domain.Position, error) {
	return s.repo.GetPositions(ctx, token)
}

// CreatePosition persists a new position. An empty status defaults to CvSent.
func (s *PositionService) CreatePosition(ctx context.Context, input domain.CreatePositionInput, token string) (*domain.Position, error) {
	return s.repo.CreatePosition(ctx, input.WithDefaults(), token)
}

// GetPosition loads a single position.
func (s *PositionService) GetPosition(ctx context.Context, id string, token string) (*domain.Position, error) {
	if err := requireID(id, ErrPositionIDRequired); err != nil {
		return nil, err
	}
	return s.repo.GetPositionByID(ctx, id, token)
}

// UpdatePosition applies changes to a position. A status in changes that
// differs from the current one is applied through AdvanceStatus after the
// field update.
func (s *PositionService) UpdatePosition(ctx context.Context, id string, changes domain.PositionChanges, token string) (*domain.Position, error) {
	pos, err := s.GetPosition(ctx, id, token)
	if err != nil {
		return nil, err
	}

	at := s.clock.Now()
	if err := pos.Update(changes, at); err != nil {
		return nil, err
	}
	if changes.Status != nil && *changes.Status != pos.Status() {
		if err := pos.AdvanceStatus(*changes.Status, at); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, pos, token); err != nil {
		return nil, err
	}
	return pos, nil
}

// ChangeStatus moves a position to a new status.
func (s *PositionService) ChangeStatus(ctx context.Context, id string, status domain.Status, token string) (*domain.Position, error) {
	pos, err := s.GetPosition(ctx, id, token)
	if err != nil {
		return nil, err
	}

	if err := pos.AdvanceStatus(status, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, pos, token); err != nil {
		return nil, err
	}
	return pos, nil
}

// DeletePosition soft-deletes a position.
func (s *PositionService) DeletePosition(ctx context.Context, id string, token string) error {
	if err := requireID(id, ErrPositionIDRequired); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, token)
}
