package adapters

import (
	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

// sampleUserID owns the sample positions.
const sampleUserID = "user-1"

// SamplePositions returns the demo positions served in memory mode.
func SamplePositions(clock ports.Clock) ([]*domain.Position, error) {
	t := clock.Now()
	samples := []domain.PositionPrimitives{
		{
			ID:             "1",
			UserID:         sampleUserID,
			Company:        "Rust Corp",
			RoleTitle:      "Senior Rust Developer",
			Description:    "Writing safe code.",
			AppliedOn:      "2023-10-27",
			URL:            "https://rust-corp.com/jobs/1",
			InitialComment: "Looks promising",
			Status:         domain.StatusCvSent,
			CreatedAt:      t,
			UpdatedAt:      t,
		},
		{
			ID:             "2",
			UserID:         sampleUserID,
			Company:        "Next.js Inc",
			RoleTitle:      "Frontend Engineer",
			Description:    "Building the web.",
			AppliedOn:      "2023-11-01",
			URL:            "https://nextjs.org/jobs/2",
			InitialComment: "Referral from a friend",
			Status:         domain.StatusTechnicalInterview,
			CreatedAt:      t,
			UpdatedAt:      t,
		},
	}

	out := make([]*domain.Position, 0, len(samples))
	for _, p := range samples {
		pos, err := domain.PositionFromPrimitives(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}
