package adapters

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// MemoryPositionRepository implements PositionRepository in process memory.
// Positions are stored as primitives so callers never share state with the
// store. Tokens are accepted and ignored.
type MemoryPositionRepository struct {
	mu        sync.RWMutex
	positions map[string]domain.PositionPrimitives
	order     []string
	cfg       memoryConfig
}

// Ensure MemoryPositionRepository implements the interface.
var _ ports.PositionRepository = (*MemoryPositionRepository)(nil)

// NewMemoryPositionRepository creates an empty in-memory repository.
func NewMemoryPositionRepository(opts ...MemoryOption) *MemoryPositionRepository {
	return &MemoryPositionRepository{
		positions: make(map[string]domain.PositionPrimitives),
		cfg:       newMemoryConfig(opts),
	}
}

// Seed stores positions as-is, keeping their identity and timestamps.
func (r *MemoryPositionRepository) Seed(positions ...*domain.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range positions {
		r.put(p.ToPrimitives())
	}
}

func (r *MemoryPositionRepository) put(p domain.PositionPrimitives) {
	if _, exists := r.positions[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.positions[p.ID] = p
}

// GetPositions returns live positions in insertion order.
func (r *MemoryPositionRepository) GetPositions(ctx context.Context, _ string) ([]*domain.Position, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.GetPositions"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Position, 0, len(r.order))
	for _, id := range r.order {
		p := r.positions[id]
		if p.Deleted {
			continue
		}
		pos, err := domain.PositionFromPrimitives(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

// CreatePosition assigns an ID, owner and timestamps, then stores the position.
func (r *MemoryPositionRepository) CreatePosition(ctx context.Context, input domain.CreatePositionInput, _ string) (*domain.Position, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.CreatePosition"); err != nil {
		return nil, err
	}

	pos, err := input.NewPosition(uuid.NewString(), r.cfg.userID, r.cfg.clock.Now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(pos.ToPrimitives())
	return pos, nil
}

// GetPositionByID loads a live position.
func (r *MemoryPositionRepository) GetPositionByID(ctx context.Context, id string, _ string) (*domain.Position, error) {
	if err := r.cfg.simulateLatency(ctx, "memory.GetPositionByID"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.positions[id]
	if !ok || p.Deleted {
		return nil, positionNotFound("memory.GetPositionByID", id)
	}
	return domain.PositionFromPrimitives(p)
}

// Save overwrites a stored position.
func (r *MemoryPositionRepository) Save(ctx context.Context, pos *domain.Position, _ string) error {
	if err := r.cfg.simulateLatency(ctx, "memory.Save"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.positions[pos.ID()]; !ok {
		return positionNotFound("memory.Save", pos.ID())
	}
	r.put(pos.ToPrimitives())
	return nil
}

// Delete soft-deletes a position through the aggregate.
func (r *MemoryPositionRepository) Delete(ctx context.Context, id string, _ string) error {
	if err := r.cfg.simulateLatency(ctx, "memory.Delete"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.positions[id]
	if !ok || p.Deleted {
		return positionNotFound("memory.Delete", id)
	}
	pos, err := domain.PositionFromPrimitives(p)
	if err != nil {
		return err
	}
	pos.Delete(r.cfg.clock.Now())
	r.put(pos.ToPrimitives())
	return nil
}

// Snapshot returns every stored position, including soft-deleted ones.
func (r *MemoryPositionRepository) Snapshot() []domain.PositionPrimitives {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PositionPrimitives, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.positions[id])
	}
	return out
}

// exists reports whether id names a live position.
func (r *MemoryPositionRepository) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.positions[id]
	return ok && !p.Deleted
}

func positionNotFound(op, id string) *apperrors.Error {
	return apperrors.NotFound(op, "Position not found").WithDetail("id", id)
}
