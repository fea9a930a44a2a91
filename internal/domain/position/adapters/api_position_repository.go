package adapters

import (
	"context"
	"net/http"
	"net/url"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

const positionNotFoundMessage = "Position not found"

// APIPositionRepository implements PositionRepository over the tracker API.
// The API soft-deletes on DELETE and omits deleted positions from listings.
type APIPositionRepository struct {
	client *APIClient
}

// Ensure APIPositionRepository implements the interface.
var _ ports.PositionRepository = (*APIPositionRepository)(nil)

// NewAPIPositionRepository creates a repository backed by client.
func NewAPIPositionRepository(client *APIClient) *APIPositionRepository {
	return &APIPositionRepository{client: client}
}

func positionPath(id string) string {
	return "/positions/" + url.PathEscape(id)
}

// GetPositions lists the caller's positions. Deleted entries that slip
// through are dropped.
func (r *APIPositionRepository) GetPositions(ctx context.Context, token string) ([]*domain.Position, error) {
	var dtos []PositionDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.GetPositions",
		method:   http.MethodGet,
		path:     "/positions",
		token:    token,
		code:     apperrors.CodeFetch,
		action:   "fetching positions",
		notFound: positionNotFoundMessage,
	}, &dtos)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Position, 0, len(dtos))
	for _, dto := range dtos {
		if dto.Deleted {
			continue
		}
		pos, err := dto.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

// CreatePosition posts a new position and returns what the API stored.
func (r *APIPositionRepository) CreatePosition(ctx context.Context, input domain.CreatePositionInput, token string) (*domain.Position, error) {
	var dto PositionDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.CreatePosition",
		method:   http.MethodPost,
		path:     "/positions",
		token:    token,
		body:     newCreatePositionDTO(input.WithDefaults()),
		code:     apperrors.CodeCreate,
		action:   "creating position",
		notFound: positionNotFoundMessage,
	}, &dto)
	if err != nil {
		return nil, err
	}
	return dto.ToDomain()
}

// GetPositionByID loads one position.
func (r *APIPositionRepository) GetPositionByID(ctx context.Context, id string, token string) (*domain.Position, error) {
	var dto PositionDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.GetPositionByID",
		method:   http.MethodGet,
		path:     positionPath(id),
		token:    token,
		code:     apperrors.CodeFetch,
		action:   "fetching position",
		notFound: positionNotFoundMessage,
	}, &dto)
	if err != nil {
		return nil, err
	}
	if dto.Deleted {
		return nil, positionNotFound("api.GetPositionByID", id)
	}
	return dto.ToDomain()
}

// Save sends the editable fields of position.
func (r *APIPositionRepository) Save(ctx context.Context, position *domain.Position, token string) error {
	return r.client.do(ctx, apiRequest{
		op:       "api.Save",
		method:   http.MethodPut,
		path:     positionPath(position.ID()),
		token:    token,
		body:     newUpdatePositionDTO(position),
		code:     apperrors.CodeUpdate,
		action:   "updating position",
		notFound: positionNotFoundMessage,
	}, nil)
}

// Delete asks the API to soft-delete a position.
func (r *APIPositionRepository) Delete(ctx context.Context, id string, token string) error {
	return r.client.do(ctx, apiRequest{
		op:       "api.Delete",
		method:   http.MethodDelete,
		path:     positionPath(id),
		token:    token,
		code:     apperrors.CodeDelete,
		action:   "deleting position",
		notFound: positionNotFoundMessage,
	}, nil)
}
