// Package adapters provides infrastructure implementations for the position domain.
package adapters

import (
	"time"

	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

// RealClock implements ports.Clock using the system time.
type RealClock struct{}

// Ensure RealClock implements the interface.
var _ ports.Clock = (*RealClock)(nil)

// Now returns the current system time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a new RealClock instance.
func NewRealClock() *RealClock {
	return &RealClock{}
}
