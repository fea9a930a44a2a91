package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Mock implementations

var mockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type mockPositionRepository struct {
	mu        sync.Mutex
	positions map[string]domain.PositionPrimitives
	saves     int
	nextID    int
	getErr    error
	saveErr   error
	lastToken string
}

func newMockPositionRepository() *mockPositionRepository {
	return &mockPositionRepository{positions: make(map[string]domain.PositionPrimitives)}
}

func (m *mockPositionRepository) add(t *testing.T, p domain.PositionPrimitives) {
	t.Helper()
	_, err := domain.PositionFromPrimitives(p)
	require.NoError(t, err)
	m.positions[p.ID] = p
}

func (m *mockPositionRepository) GetPositions(_ context.Context, token string) ([]*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastToken = token
	ids := make([]string, 0, len(m.positions))
	for id := range m.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.Position, 0, len(ids))
	for _, id := range ids {
		p, err := domain.PositionFromPrimitives(m.positions[id])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPositionRepository) CreatePosition(_ context.Context, input domain.CreatePositionInput, token string) (*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastToken = token
	m.nextID++
	pos, err := input.NewPosition("pos-new-"+string(rune('0'+m.nextID)), "user-1", mockEpoch)
	if err != nil {
		return nil, err
	}
	m.positions[pos.ID()] = pos.ToPrimitives()
	return pos, nil
}

func (m *mockPositionRepository) GetPositionByID(_ context.Context, id string, token string) (*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastToken = token
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.positions[id]
	if !ok || p.Deleted {
		return nil, apperrors.NotFound("mock.GetPositionByID", "Position not found")
	}
	return domain.PositionFromPrimitives(p)
}

func (m *mockPositionRepository) Save(_ context.Context, pos *domain.Position, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastToken = token
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.positions[pos.ID()] = pos.ToPrimitives()
	return nil
}

func (m *mockPositionRepository) Delete(_ context.Context, id string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastToken = token
	p, ok := m.positions[id]
	if !ok || p.Deleted {
		return apperrors.NotFound("mock.Delete", "Position not found")
	}
	pos, err := domain.PositionFromPrimitives(p)
	if err != nil {
		return err
	}
	pos.Delete(mockEpoch.Add(time.Hour))
	m.positions[id] = pos.ToPrimitives()
	return nil
}

type mockCommentRepository struct {
	mu       sync.Mutex
	comments []domain.CommentPrimitives
	calls    int
	getErr   error
}

func (m *mockCommentRepository) GetComments(_ context.Context, positionID string, _ string) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*domain.Comment
	for _, p := range m.comments {
		if p.PositionID == positionID {
			c, err := domain.CommentFromPrimitives(p)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepository) CreateComment(_ context.Context, positionID string, input domain.CreateCommentInput, _ string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p := domain.CommentPrimitives{ID: "c-new", PositionID: positionID, UserID: "user-1", Body: input.Body}
	c, err := domain.CommentFromPrimitives(p)
	if err != nil {
		return nil, err
	}
	m.comments = append([]domain.CommentPrimitives{p}, m.comments...)
	return c, nil
}

func (m *mockCommentRepository) UpdateComment(_ context.Context, positionID, commentID string, input domain.UpdateCommentInput, _ string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for i, p := range m.comments {
		if p.ID == commentID && p.PositionID == positionID {
			p.Body = input.Body
			c, err := domain.CommentFromPrimitives(p)
			if err != nil {
				return nil, err
			}
			m.comments[i] = p
			return c, nil
		}
	}
	return nil, apperrors.NotFound("mock.UpdateComment", "Comment not found")
}

func (m *mockCommentRepository) DeleteComment(_ context.Context, positionID, commentID string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for i, p := range m.comments {
		if p.ID == commentID && p.PositionID == positionID {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("mock.DeleteComment", "Comment not found")
}

var created = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func primitives(id string, status domain.Status) domain.PositionPrimitives {
	return domain.PositionPrimitives{
		ID:        id,
		UserID:    "user-1",
		Company:   "Rust Corp",
		RoleTitle: "Backend Engineer",
		AppliedOn: "2024-01-15",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

func TestPositionService_ChangeStatusScenario(t *testing.T) {
	ctx := context.Background()
	repo := newMockPositionRepository()
	clock := &stepClock{t: mockEpoch}
	svc := NewPositionService(repo, WithServiceClock(clock))

	pos, err := svc.CreatePosition(ctx, domain.CreatePositionInput{
		Company:   "Rust Corp",
		RoleTitle: "Backend Engineer",
		AppliedOn: "2024-01-15",
		Status:    domain.StatusCvSent,
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, mockEpoch, pos.UpdatedAt())

	clock.advance(time.Hour)
	_, err = svc.ChangeStatus(ctx, pos.ID(), domain.StatusPhoneScreenScheduled, "tok")
	require.NoError(t, err)

	reloaded, err := svc.GetPosition(ctx, pos.ID(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPhoneScreenScheduled, reloaded.Status())
	assert.Equal(t, clock.Now(), reloaded.UpdatedAt())

	_, err = svc.ChangeStatus(ctx, pos.ID(), domain.StatusCvSent, "tok")
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot transition from PhoneScreenScheduled to CvSent")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	reloaded, err = svc.GetPosition(ctx, pos.ID(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPhoneScreenScheduled, reloaded.Status())
	assert.Equal(t, "tok", repo.lastToken)
}

func TestPositionService_CreateDefaultsStatus(t *testing.T) {
	svc := NewPositionService(newMockPositionRepository())

	pos, err := svc.CreatePosition(context.Background(), domain.CreatePositionInput{
		Company:   "Next.js Inc",
		RoleTitle: "Frontend Engineer",
		AppliedOn: "2024-02-01",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCvSent, pos.Status())
}

func TestPositionService_UpdatePosition(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.Status
		changes    domain.PositionChanges
		wantErr    error
		wantStatus domain.Status
		wantComp   string
	}{
		{
			name:       "fields only",
			status:     domain.StatusCvSent,
			changes:    domain.PositionChanges{Company: strPtr("Acme")},
			wantStatus: domain.StatusCvSent,
			wantComp:   "Acme",
		},
		{
			name:       "fields and status",
			status:     domain.StatusCvSent,
			changes:    domain.PositionChanges{Company: strPtr("Acme"), Status: statusPtr(domain.StatusTechnicalInterview)},
			wantStatus: domain.StatusTechnicalInterview,
			wantComp:   "Acme",
		},
		{
			name:       "same status",
			status:     domain.StatusOfferReceived,
			changes:    domain.PositionChanges{Status: statusPtr(domain.StatusOfferReceived)},
			wantStatus: domain.StatusOfferReceived,
			wantComp:   "Rust Corp",
		},
		{
			name:       "forbidden status",
			status:     domain.StatusOfferReceived,
			changes:    domain.PositionChanges{Company: strPtr("Acme"), Status: statusPtr(domain.StatusCvSent)},
			wantErr:    domain.ErrInvalidStatusTransition,
			wantStatus: domain.StatusOfferReceived,
			wantComp:   "Rust Corp",
		},
		{
			name:       "blank company",
			status:     domain.StatusCvSent,
			changes:    domain.PositionChanges{Company: strPtr("  ")},
			wantErr:    domain.ErrMissingCompany,
			wantStatus: domain.StatusCvSent,
			wantComp:   "Rust Corp",
		},
		{
			name:       "rejected is locked",
			status:     domain.StatusRejected,
			changes:    domain.PositionChanges{Description: strPtr("x")},
			wantErr:    domain.ErrPositionLocked,
			wantStatus: domain.StatusRejected,
			wantComp:   "Rust Corp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockPositionRepository()
			repo.add(t, primitives("p1", tt.status))
			svc := NewPositionService(repo)

			_, err := svc.UpdatePosition(context.Background(), "p1", tt.changes, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, repo.saves, "failed updates must not be persisted")
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, repo.saves)
			}

			stored := repo.positions["p1"]
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, tt.wantComp, stored.Company)
		})
	}
}

func TestPositionService_StampsEditsWithClock(t *testing.T) {
	ctx := context.Background()
	repo := newMockPositionRepository()
	repo.add(t, primitives("p1", domain.StatusCvSent))
	clock := &stepClock{t: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewPositionService(repo, WithServiceClock(clock))

	clock.advance(time.Hour)
	pos, err := svc.UpdatePosition(ctx, "p1", domain.PositionChanges{
		Company: strPtr("Acme"),
		Status:  statusPtr(domain.StatusTechnicalInterview),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), pos.UpdatedAt())
	assert.Equal(t, clock.Now(), repo.positions["p1"].UpdatedAt)

	clock.advance(time.Hour)
	pos, err = svc.ChangeStatus(ctx, "p1", domain.StatusOfferReceived, "")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), pos.UpdatedAt())

	// A no-op status change keeps the previous stamp.
	stamped := pos.UpdatedAt()
	clock.advance(time.Hour)
	pos, err = svc.ChangeStatus(ctx, "p1", domain.StatusOfferReceived, "")
	require.NoError(t, err)
	assert.Equal(t, stamped, pos.UpdatedAt())
}

func TestPositionService_PropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	unauthorized := apperrors.Unauthorized("api", "No authentication token found")

	repo := newMockPositionRepository()
	repo.getErr = unauthorized
	svc := NewPositionService(repo)

	_, err := svc.GetPosition(ctx, "p1", "")
	assert.Same(t, unauthorized, err)

	_, err = svc.ChangeStatus(ctx, "p1", domain.StatusRejected, "")
	assert.Same(t, unauthorized, err)

	repo = newMockPositionRepository()
	repo.add(t, primitives("p1", domain.StatusCvSent))
	saveErr := apperrors.Infrastructure("api", apperrors.CodeUpdate, "Error updating position", 500)
	repo.saveErr = saveErr
	svc = NewPositionService(repo)

	_, err = svc.ChangeStatus(ctx, "p1", domain.StatusRejected, "")
	assert.Same(t, saveErr, err)
}

func TestPositionService_NotFound(t *testing.T) {
	svc := NewPositionService(newMockPositionRepository())

	_, err := svc.GetPosition(context.Background(), "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetPosition(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrPositionIDRequired)
}

func TestPositionService_DeletePosition(t *testing.T) {
	ctx := context.Background()
	repo := newMockPositionRepository()
	repo.add(t, primitives("p1", domain.StatusCvSent))
	svc := NewPositionService(repo)

	require.NoError(t, svc.DeletePosition(ctx, "p1", ""))
	assert.True(t, repo.positions["p1"].Deleted)
	require.NotNil(t, repo.positions["p1"].DeletedAt)

	_, err := svc.GetPosition(ctx, "p1", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, svc.DeletePosition(ctx, "", ""), ErrPositionIDRequired)
}

func TestCommentService_UpdateMissingComment(t *testing.T) {
	ctx := context.Background()
	repo := &mockCommentRepository{comments: []domain.CommentPrimitives{
		{ID: "c1", PositionID: "p1", UserID: "user-1", Body: "first"},
	}}
	svc := NewCommentService(repo)

	before, err := svc.GetComments(ctx, "p1", "")
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, "p1", "nope", domain.UpdateCommentInput{Body: "new"}, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	after, err := svc.GetComments(ctx, "p1", "")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestCommentService_ValidatesBeforeRepository(t *testing.T) {
	ctx := context.Background()
	repo := &mockCommentRepository{}
	svc := NewCommentService(repo)

	_, err := svc.CreateComment(ctx, "p1", domain.CreateCommentInput{Body: "  "}, "")
	assert.ErrorIs(t, err, domain.ErrMissingCommentBody)

	_, err = svc.UpdateComment(ctx, "p1", "c1", domain.UpdateCommentInput{Body: ""}, "")
	assert.ErrorIs(t, err, domain.ErrMissingCommentBody)

	_, err = svc.UpdateComment(ctx, "p1", "", domain.UpdateCommentInput{Body: "ok"}, "")
	assert.ErrorIs(t, err, ErrCommentIDRequired)

	assert.Equal(t, 0, repo.calls)
}

func TestCommentService_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := &mockCommentRepository{}
	svc := NewCommentService(repo)

	c, err := svc.CreateComment(ctx, "p1", domain.CreateCommentInput{Body: "Recruiter called"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Recruiter called", c.Body())

	require.NoError(t, svc.DeleteComment(ctx, "p1", c.ID(), ""))
	comments, err := svc.GetComments(ctx, "p1", "")
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, svc.DeleteComment(ctx, "p1", c.ID(), ""), apperrors.ErrNotFound)
}

func TestGetPositionDetailUseCase(t *testing.T) {
	ctx := context.Background()
	positions := newMockPositionRepository()
	positions.add(t, primitives("p1", domain.StatusTechnicalInterview))
	comments := &mockCommentRepository{comments: []domain.CommentPrimitives{
		{ID: "c1", PositionID: "p1", UserID: "user-1", Body: "Take-home sent"},
		{ID: "c2", PositionID: "p2", UserID: "user-1", Body: "Other position"},
	}}
	uc := NewGetPositionDetailUseCase(positions, comments)

	out, err := uc.Execute(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "p1", out.Position.ID())
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "c1", out.Comments[0].ID())
	assert.Equal(t, []domain.Status{domain.StatusOfferReceived, domain.StatusRejected, domain.StatusWithdrawn}, out.AllowedTargets)

	comments.getErr = apperrors.Forbidden("api", "")
	_, err = uc.Execute(ctx, "p1", "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = uc.Execute(ctx, "missing", "")
	assert.Error(t, err)
}
