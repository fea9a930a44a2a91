package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
	apperrors "github.com/applytrack/applytrack/internal/errors"
	"github.com/applytrack/applytrack/internal/session"
)

const testToken = "opaque-test-token"

func positionJSON(id, status string, deleted bool) map[string]any {
	return map[string]any{
		"id":              id,
		"user_id":         "user-1",
		"company":         "Rust Corp",
		"role_title":      "Senior Rust Developer",
		"description":     "Writing safe code.",
		"applied_on":      "2023-10-27",
		"url":             "https://rust-corp.com/jobs/1",
		"initial_comment": "Looks promising",
		"status":          status,
		"created_at":      "2024-01-15T09:00:00.123456+01:00",
		"updated_at":      "2024-01-15T09:00:00Z",
		"deleted_at":      nil,
		"deleted":         deleted,
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, handler http.Handler, cfg APIClientConfig, store *MemoryTokenStore) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	client := NewAPIClient(cfg, session.NewResolver(store, nil))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func plainConfig() APIClientConfig {
	return APIClientConfig{Timeout: 5 * time.Second}
}

func TestAPIPositionRepository_GetPositions(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/positions", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []any{
			positionJSON("1", "CvSent", false),
			positionJSON("2", "Rejected", true),
		})
	})
	repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken)))

	list, err := repo.GetPositions(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1, "deleted positions are filtered out")
	assert.Equal(t, "Rust Corp", list[0].Company())
	assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 123456000, time.UTC), list[0].CreatedAt())
	assert.Equal(t, "Bearer "+testToken, gotAuth)
}

func TestAPIPositionRepository_ProvidedTokenWins(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, []any{})
	})
	repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore("stored")))

	_, err := repo.GetPositions(context.Background(), "explicit")
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", gotAuth)
}

func TestAPIPositionRepository_NoTokenNeverHitsNetwork(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(t, w, http.StatusOK, []any{})
	})
	client := newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(""))
	positions := NewAPIPositionRepository(client)
	comments := NewAPICommentRepository(client)
	ctx := context.Background()

	_, err := positions.GetPositions(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.EqualError(t, err, "session.Resolve: No authentication token found")

	_, err = positions.GetPositionByID(ctx, "1", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, positions.Delete(ctx, "1", ""), apperrors.ErrUnauthorized)
	_, err = comments.GetComments(ctx, "1", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Equal(t, int32(0), hits.Load())
}

func TestAPIPositionRepository_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   apperrors.Kind
		wantCode   string
		wantMsg    string
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.KindUnauthorized, apperrors.CodeUnauthorized, "Unauthorized", 401},
		{"forbidden", http.StatusForbidden, apperrors.KindForbidden, apperrors.CodeForbidden, "Access forbidden", 403},
		{"not found", http.StatusNotFound, apperrors.KindNotFound, apperrors.CodeNotFound, "Position not found", 404},
		{"server error", http.StatusInternalServerError, apperrors.KindInfrastructure, apperrors.CodeFetch, "Error fetching position: Internal Server Error", 500},
		{"bad request", http.StatusBadRequest, apperrors.KindInfrastructure, apperrors.CodeFetch, "Error fetching position: Bad Request", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken)))

			_, err := repo.GetPositionByID(context.Background(), "42", "")
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, tt.wantStatus, appErr.Status)
		})
	}
}

func TestAPIPositionRepository_WriteCodes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken))
	repo := NewAPIPositionRepository(client)
	ctx := context.Background()

	_, err := repo.CreatePosition(ctx, sampleInput(), "")
	assert.Equal(t, apperrors.CodeCreate, apperrors.GetCode(err))

	pos, perr := sampleInput().NewPosition("1", "u", testEpoch)
	require.NoError(t, perr)
	err = repo.Save(ctx, pos, "")
	assert.Equal(t, apperrors.CodeUpdate, apperrors.GetCode(err))
	assert.Equal(t, 502, apperrors.HTTPStatus(err))

	err = repo.Delete(ctx, "1", "")
	assert.Equal(t, apperrors.CodeDelete, apperrors.GetCode(err))
}

func TestAPIPositionRepository_CreateAndSave(t *testing.T) {
	var created, updated map[string]any
	handler := http.NewServeMux()
	handler.HandleFunc("/positions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		writeJSON(t, w, http.StatusCreated, positionJSON("new-1", "CvSent", false))
	})
	handler.HandleFunc("/positions/new-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
		w.WriteHeader(http.StatusNoContent)
	})
	repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken)))
	ctx := context.Background()

	pos, err := repo.CreatePosition(ctx, sampleInput(), "")
	require.NoError(t, err)
	assert.Equal(t, "new-1", pos.ID())
	assert.Equal(t, "CvSent", created["status"], "create defaults status")
	assert.Equal(t, "Senior Rust Developer", created["role_title"])
	assert.Contains(t, created, "initial_comment")

	require.NoError(t, pos.AdvanceStatus(domain.StatusTechnicalInterview, testEpoch.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, pos, ""))
	assert.Equal(t, "TechnicalInterview", updated["status"])
	assert.Equal(t, "2023-10-27", updated["applied_on"])
	assert.NotContains(t, updated, "id")
	assert.NotContains(t, updated, "deleted")
}

func TestAPIPositionRepository_DeletedByID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, positionJSON("9", "CvSent", true))
	})
	repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken)))

	_, err := repo.GetPositionByID(context.Background(), "9", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAPIPositionRepository_InvalidPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := positionJSON("1", "Ghosted", false)
		writeJSON(t, w, http.StatusOK, p)
	})
	repo := NewAPIPositionRepository(newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(testToken)))

	_, err := repo.GetPositionByID(context.Background(), "1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAPICommentRepository(t *testing.T) {
	comment := map[string]any{
		"id":          "c1",
		"position_id": "p1",
		"user_id":     "user-1",
		"body":        "Recruiter called",
		"created_at":  "2024-01-15T09:00:00Z",
		"updated_at":  "2024-01-15T09:00:00Z",
	}
	var putBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/positions/p1/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, []any{comment})
		case http.MethodPost:
			writeJSON(t, w, http.StatusCreated, comment)
		}
	})
	mux.HandleFunc("/positions/p1/comments/c1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
			edited := map[string]any{}
			for k, v := range comment {
				edited[k] = v
			}
			edited["body"] = putBody["body"]
			writeJSON(t, w, http.StatusOK, edited)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/positions/p1/comments/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	repo := NewAPICommentRepository(newTestClient(t, mux, plainConfig(), NewMemoryTokenStore(testToken)))
	ctx := context.Background()

	list, err := repo.GetComments(ctx, "p1", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Recruiter called", list[0].Body())

	c, err := repo.CreateComment(ctx, "p1", domain.CreateCommentInput{Body: "Recruiter called"}, "")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID())

	edited, err := repo.UpdateComment(ctx, "p1", "c1", domain.UpdateCommentInput{Body: "Onsite booked"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Onsite booked", edited.Body())
	assert.Equal(t, "Onsite booked", putBody["body"])

	require.NoError(t, repo.DeleteComment(ctx, "p1", "c1", ""))

	_, err = repo.UpdateComment(ctx, "p1", "missing", domain.UpdateCommentInput{Body: "x"}, "")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Comment not found", appErr.Message)
}

func TestAPIClient_Login(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "fresh-token"})
	})
	client := newTestClient(t, handler, plainConfig(), NewMemoryTokenStore(""))

	token, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	_, err = client.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestAPIClient_CircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	cfg := plainConfig()
	cfg.CircuitBreakerEnabled = true
	cfg.CircuitBreakerThreshold = 2
	cfg.CircuitBreakerTimeout = time.Minute
	client := newTestClient(t, handler, cfg, NewMemoryTokenStore(testToken))
	repo := NewAPIPositionRepository(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.GetPositions(ctx, "")
		assert.Equal(t, 503, apperrors.HTTPStatus(err))
	}
	assert.Equal(t, "open", client.CircuitBreakerState())

	_, err := repo.GetPositions(ctx, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInfrastructure))
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits the request")
}

func TestAPIClient_RateLimitedRequestsSucceed(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []any{})
	})
	cfg := plainConfig()
	cfg.RateLimitRPM = 60
	repo := NewAPIPositionRepository(newTestClient(t, handler, cfg, NewMemoryTokenStore(testToken)))

	for i := 0; i < 3; i++ {
		_, err := repo.GetPositions(context.Background(), "")
		require.NoError(t, err)
	}
}

func TestAPIClient_LogsWithoutToken(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []any{})
	}))
	t.Cleanup(srv.Close)

	cfg := plainConfig()
	cfg.BaseURL = srv.URL
	client := NewAPIClient(cfg, session.NewResolver(NewMemoryTokenStore(testToken), nil), WithLogger(logger))
	_, err := NewAPIPositionRepository(client).GetPositions(context.Background(), "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "api request")
	assert.Contains(t, out, "/positions")
	assert.NotContains(t, out, testToken)
}

func TestAPIClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := plainConfig()
	cfg.BaseURL = url
	client := NewAPIClient(cfg, session.NewResolver(NewMemoryTokenStore(testToken), nil),
		WithHTTPClient(&http.Client{Timeout: time.Second}))

	_, err := NewAPIPositionRepository(client).GetPositions(context.Background(), "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInfrastructure))
	assert.Equal(t, apperrors.CodeFetch, apperrors.GetCode(err))
}

func TestPositionDTO_RoundTrip(t *testing.T) {
	pos, err := sampleInput().NewPosition("1", "user-1", testEpoch)
	require.NoError(t, err)
	pos.Delete(testEpoch.Add(time.Hour))

	dto := NewPositionDTO(pos)
	data, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role_title"`)

	var decoded PositionDTO
	require.NoError(t, json.NewDecoder(io.NopCloser(bytes.NewReader(data))).Decode(&decoded))
	back, err := decoded.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, pos.ToPrimitives(), back.ToPrimitives())
}
