package adapters

import (
	"context"
	"time"

	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// MemoryUserID owns everything created through the in-memory repositories.
const MemoryUserID = "in-memory-user"

// MemoryOption configures the in-memory repositories.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	latency time.Duration
	clock   ports.Clock
	userID  string

	// positions, when set, scopes comment reads and writes to live positions.
	positions *MemoryPositionRepository
}

func newMemoryConfig(opts []MemoryOption) memoryConfig {
	cfg := memoryConfig{
		clock:  RealClock{},
		userID: MemoryUserID,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLatency delays every call to simulate a network round trip.
func WithLatency(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.latency = d }
}

// WithClock sets the clock used for creation and edit timestamps.
func WithClock(clock ports.Clock) MemoryOption {
	return func(c *memoryConfig) { c.clock = clock }
}

// WithUserID sets the owner of newly created records.
func WithUserID(id string) MemoryOption {
	return func(c *memoryConfig) { c.userID = id }
}

// WithPositions makes the comment repository answer "Position not found" for
// positions that are missing or soft-deleted in repo, as the tracker API does.
// It has no effect on the position repository.
func WithPositions(repo *MemoryPositionRepository) MemoryOption {
	return func(c *memoryConfig) { c.positions = repo }
}

// simulateLatency waits for the configured latency or until ctx is done.
func (c memoryConfig) simulateLatency(ctx context.Context, op string) error {
	if c.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return apperrors.CanceledWrap(err, op)
		}
		return nil
	}
	timer := time.NewTimer(c.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperrors.CanceledWrap(ctx.Err(), op)
	case <-timer.C:
		return nil
	}
}
