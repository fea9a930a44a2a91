package adapters

import (
	"context"
	"net/http"
	"net/url"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
)

const commentNotFoundMessage = "Comment not found"

// APICommentRepository implements CommentRepository over the tracker API.
type APICommentRepository struct {
	client *APIClient
}

// Ensure APICommentRepository implements the interface.
var _ ports.CommentRepository = (*APICommentRepository)(nil)

// NewAPICommentRepository creates a repository backed by client.
func NewAPICommentRepository(client *APIClient) *APICommentRepository {
	return &APICommentRepository{client: client}
}

func commentsPath(positionID string) string {
	return positionPath(positionID) + "/comments"
}

func commentPath(positionID, commentID string) string {
	return commentsPath(positionID) + "/" + url.PathEscape(commentID)
}

// GetComments lists the comments of a position.
func (r *APICommentRepository) GetComments(ctx context.Context, positionID string, token string) ([]*domain.Comment, error) {
	var dtos []CommentDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.GetComments",
		method:   http.MethodGet,
		path:     commentsPath(positionID),
		token:    token,
		code:     apperrors.CodeFetch,
		action:   "fetching comments",
		notFound: positionNotFoundMessage,
	}, &dtos)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Comment, 0, len(dtos))
	for _, dto := range dtos {
		c, err := dto.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateComment posts a new comment.
func (r *APICommentRepository) CreateComment(ctx context.Context, positionID string, input domain.CreateCommentInput, token string) (*domain.Comment, error) {
	var dto CommentDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.CreateComment",
		method:   http.MethodPost,
		path:     commentsPath(positionID),
		token:    token,
		body:     commentBodyDTO{Body: input.Body},
		code:     apperrors.CodeCreate,
		action:   "creating comment",
		notFound: positionNotFoundMessage,
	}, &dto)
	if err != nil {
		return nil, err
	}
	return dto.ToDomain()
}

// UpdateComment replaces the body of a comment.
func (r *APICommentRepository) UpdateComment(ctx context.Context, positionID, commentID string, input domain.UpdateCommentInput, token string) (*domain.Comment, error) {
	var dto CommentDTO
	err := r.client.do(ctx, apiRequest{
		op:       "api.UpdateComment",
		method:   http.MethodPut,
		path:     commentPath(positionID, commentID),
		token:    token,
		body:     commentBodyDTO{Body: input.Body},
		code:     apperrors.CodeUpdate,
		action:   "updating comment",
		notFound: commentNotFoundMessage,
	}, &dto)
	if err != nil {
		return nil, err
	}
	return dto.ToDomain()
}

// DeleteComment removes a comment.
func (r *APICommentRepository) DeleteComment(ctx context.Context, positionID, commentID string, token string) error {
	return r.client.do(ctx, apiRequest{
		op:       "api.DeleteComment",
		method:   http.MethodDelete,
		path:     commentPath(positionID, commentID),
		token:    token,
		code:     apperrors.CodeDelete,
		action:   "deleting comment",
		notFound: commentNotFoundMessage,
	}, nil)
}
