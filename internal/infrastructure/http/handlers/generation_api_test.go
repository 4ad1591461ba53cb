package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/inbound"
	"github.com/vitalplate/v1/pkg/errors"
)

type fakeService struct {
	generate func(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationResponse, error)
	batch    func(ctx context.Context, cmd inbound.BatchCommand) (*inbound.BatchResponse, error)
	quota    func(ctx context.Context, callerID uuid.UUID) (*inbound.QuotaStatusDTO, error)
	list     func(ctx context.Context, callerID uuid.UUID, limit int) ([]*generation.Recipe, error)
}

func (s *fakeService) GenerateRecipe(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationResponse, error) {
	return s.generate(ctx, cmd)
}

func (s *fakeService) GenerateBatch(ctx context.Context, cmd inbound.BatchCommand) (*inbound.BatchResponse, error) {
	return s.batch(ctx, cmd)
}

func (s *fakeService) QuotaStatus(ctx context.Context, callerID uuid.UUID) (*inbound.QuotaStatusDTO, error) {
	return s.quota(ctx, callerID)
}

func (s *fakeService) ListRecipes(ctx context.Context, callerID uuid.UUID, limit int) ([]*generation.Recipe, error) {
	return s.list(ctx, callerID, limit)
}

func generateRequestBody(targetID uuid.UUID) string {
	return `{"target_id": "` + targetID.String() + `", "meal_name": "salmon dinner", "systems": ["immunity"]}`
}

func TestGenerateHandlerSuccess(t *testing.T) {
	callerID := uuid.New()
	targetID := uuid.New()

	service := &fakeService{
		generate: func(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationResponse, error) {
			assert.Equal(t, callerID, cmd.CallerID)
			assert.Equal(t, targetID, cmd.Request.TargetID)
			require.Len(t, cmd.Request.Systems, 1)
			assert.Equal(t, generation.SystemImmunity, cmd.Request.Systems[0])
			return &inbound.GenerationResponse{
				Recipe:     &generation.Candidate{Title: "Roasted Salmon with Garlic Herb Butter"},
				Validation: generation.ValidationOutcome{Valid: true},
			}, nil
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", strings.NewReader(generateRequestBody(targetID)))
	req.Header.Set(callerHeader, callerID.String())
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp inbound.GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Roasted Salmon with Garlic Herb Butter", resp.Recipe.Title)
	assert.True(t, resp.Validation.Valid)
}

func TestGenerateHandlerMissingCallerHeader(t *testing.T) {
	h := NewGenerationAPIHandlers(&fakeService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", strings.NewReader(generateRequestBody(uuid.New())))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateHandlerInvalidCallerHeader(t *testing.T) {
	h := NewGenerationAPIHandlers(&fakeService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", strings.NewReader(generateRequestBody(uuid.New())))
	req.Header.Set(callerHeader, "not-a-uuid")
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateHandlerValidation(t *testing.T) {
	h := NewGenerationAPIHandlers(&fakeService{}, zap.NewNop())
	callerID := uuid.New()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"target_id"`},
		{"missing target", `{"meal_name": "soup"}`},
		{"missing meal name", `{"target_id": "` + uuid.NewString() + `"}`},
		{"unknown system", `{"target_id": "` + uuid.NewString() + `", "meal_name": "soup", "systems": ["telomeres"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", strings.NewReader(tc.body))
			req.Header.Set(callerHeader, callerID.String())
			rec := httptest.NewRecorder()

			h.Generate(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGenerateHandlerRateLimitSetsRetryAfter(t *testing.T) {
	service := &fakeService{
		generate: func(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationResponse, error) {
			return nil, errors.NewRateLimitedError(42)
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", strings.NewReader(generateRequestBody(uuid.New())))
	req.Header.Set(callerHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeRateLimited, resp.Error.Code)
}

func TestGenerateBatchHandler(t *testing.T) {
	callerID := uuid.New()
	service := &fakeService{
		batch: func(ctx context.Context, cmd inbound.BatchCommand) (*inbound.BatchResponse, error) {
			assert.Len(t, cmd.Requests, 2)
			return &inbound.BatchResponse{
				Results:   make([]generation.Result, 2),
				Succeeded: 2,
			}, nil
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	body := `{"requests": [` +
		generateRequestBody(uuid.New()) + `,` +
		generateRequestBody(uuid.New()) + `]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations/batch", strings.NewReader(body))
	req.Header.Set(callerHeader, callerID.String())
	rec := httptest.NewRecorder()

	h.GenerateBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp inbound.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Succeeded)
}

func TestGenerateBatchHandlerQuotaExceeded(t *testing.T) {
	service := &fakeService{
		batch: func(ctx context.Context, cmd inbound.BatchCommand) (*inbound.BatchResponse, error) {
			return nil, errors.NewQuotaExceededError(3, 1, 5)
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	body := `{"requests": [` + generateRequestBody(uuid.New()) + `]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations/batch", strings.NewReader(body))
	req.Header.Set(callerHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	h.GenerateBatch(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeQuotaExceeded, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "need 3 more, only 1 remaining")
}

func TestListRecipesHandler(t *testing.T) {
	callerID := uuid.New()
	service := &fakeService{
		list: func(ctx context.Context, id uuid.UUID, limit int) ([]*generation.Recipe, error) {
			assert.Equal(t, callerID, id)
			assert.Equal(t, 5, limit)
			return []*generation.Recipe{{ID: uuid.New(), Title: "Miso Glazed Eggplant"}}, nil
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes?limit=5", nil)
	req.Header.Set(callerHeader, callerID.String())
	rec := httptest.NewRecorder()

	h.ListRecipes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Recipes []generation.Recipe `json:"recipes"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Miso Glazed Eggplant", resp.Recipes[0].Title)
}

func TestListRecipesHandlerBadLimit(t *testing.T) {
	h := NewGenerationAPIHandlers(&fakeService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes?limit=zero", nil)
	req.Header.Set(callerHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	h.ListRecipes(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuotaStatusHandler(t *testing.T) {
	callerID := uuid.New()
	service := &fakeService{
		quota: func(ctx context.Context, id uuid.UUID) (*inbound.QuotaStatusDTO, error) {
			assert.Equal(t, callerID, id)
			return &inbound.QuotaStatusDTO{Tier: "FREE", Used: 3, Limit: 7, Remaining: "4"}, nil
		},
	}
	h := NewGenerationAPIHandlers(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota", nil)
	req.Header.Set(callerHeader, callerID.String())
	rec := httptest.NewRecorder()

	h.QuotaStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status inbound.QuotaStatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "4", status.Remaining)
}
