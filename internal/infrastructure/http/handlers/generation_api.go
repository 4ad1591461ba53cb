// Package handlers provides HTTP handlers for the generation API endpoints
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/inbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// callerHeader carries the authenticated caller id. Identity resolution
// happens upstream of this service.
const callerHeader = "X-Caller-ID"

// GenerationAPIHandlers handles generation API requests
type GenerationAPIHandlers struct {
	service inbound.GenerationService
	logger  *zap.Logger
}

// NewGenerationAPIHandlers creates a new generation API handlers instance
func NewGenerationAPIHandlers(service inbound.GenerationService, logger *zap.Logger) *GenerationAPIHandlers {
	return &GenerationAPIHandlers{
		service: service,
		logger:  logger,
	}
}

// GenerateRequest represents a single recipe generation request
type GenerateRequest struct {
	TargetID            uuid.UUID `json:"target_id"`
	MealName            string    `json:"meal_name"`
	MealType            string    `json:"meal_type,omitempty"`
	Systems             []string  `json:"systems,omitempty"`
	DietaryRestrictions []string  `json:"dietary_restrictions,omitempty"`
	Servings            int       `json:"servings,omitempty"`
	CustomInstructions  string    `json:"custom_instructions,omitempty"`
	ForceRegenerate     bool      `json:"force_regenerate,omitempty"`
}

// BatchGenerateRequest represents a batch generation request
type BatchGenerateRequest struct {
	Requests        []GenerateRequest `json:"requests"`
	ForceRegenerate bool              `json:"force_regenerate,omitempty"`
}

// Generate handles POST /api/v1/generations
func (h *GenerationAPIHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewBadRequestError("invalid JSON payload"))
		return
	}

	domainReq, err := toDomainRequest(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response, svcErr := h.service.GenerateRecipe(r.Context(), inbound.GenerateCommand{
		CallerID:        callerID,
		Request:         domainReq,
		ForceRegenerate: req.ForceRegenerate,
	})
	if svcErr != nil {
		h.logger.Warn("generation request failed",
			zap.String("caller_id", callerID.String()),
			zap.Error(svcErr),
		)
		h.writeError(w, svcErr)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// GenerateBatch handles POST /api/v1/generations/batch
func (h *GenerationAPIHandlers) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req BatchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewBadRequestError("invalid JSON payload"))
		return
	}

	requests := make([]generation.Request, 0, len(req.Requests))
	for _, item := range req.Requests {
		domainReq, err := toDomainRequest(item)
		if err != nil {
			h.writeError(w, err)
			return
		}
		requests = append(requests, domainReq)
	}

	response, svcErr := h.service.GenerateBatch(r.Context(), inbound.BatchCommand{
		CallerID:        callerID,
		Requests:        requests,
		ForceRegenerate: req.ForceRegenerate,
	})
	if svcErr != nil {
		h.logger.Warn("batch generation request failed",
			zap.String("caller_id", callerID.String()),
			zap.Int("batch_size", len(req.Requests)),
			zap.Error(svcErr),
		)
		h.writeError(w, svcErr)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// QuotaStatus handles GET /api/v1/quota
func (h *GenerationAPIHandlers) QuotaStatus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	status, err := h.service.QuotaStatus(r.Context(), callerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

// ListRecipes handles GET /api/v1/recipes
func (h *GenerationAPIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, errors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	recipes, err := h.service.ListRecipes(r.Context(), callerID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

func toDomainRequest(req GenerateRequest) (generation.Request, error) {
	if req.TargetID == uuid.Nil {
		return generation.Request{}, errors.NewBadRequestError("target_id is required")
	}
	if req.MealName == "" {
		return generation.Request{}, errors.NewBadRequestError("meal_name is required")
	}

	systems := make([]generation.DefenseSystem, 0, len(req.Systems))
	for _, raw := range req.Systems {
		system, ok := generation.ParseDefenseSystem(raw)
		if !ok {
			return generation.Request{}, errors.NewBadRequestError("unknown defense system: " + raw)
		}
		systems = append(systems, system)
	}

	return generation.Request{
		TargetID:            req.TargetID,
		MealName:            req.MealName,
		MealType:            req.MealType,
		Systems:             systems,
		DietaryRestrictions: req.DietaryRestrictions,
		Servings:            req.Servings,
		CustomInstructions:  req.CustomInstructions,
	}, nil
}

func (h *GenerationAPIHandlers) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		h.writeError(w, errors.NewAppError(errors.CodeUnauthorized, "Caller identity missing", "set the "+callerHeader+" header"))
		return uuid.Nil, false
	}

	callerID, err := uuid.Parse(raw)
	if err != nil {
		h.writeError(w, errors.NewBadRequestError("caller id must be a valid UUID"))
		return uuid.Nil, false
	}

	return callerID, true
}

func (h *GenerationAPIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (h *GenerationAPIHandlers) writeError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err, "request failed")

	w.Header().Set("Content-Type", "application/json")
	if retryAfter, ok := appErr.Metadata["retry_after_seconds"]; ok {
		if seconds, ok := retryAfter.(int); ok && seconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	}

	w.WriteHeader(appErr.StatusCode())
	if encodeErr := json.NewEncoder(w).Encode(errors.ToErrorResponse(appErr)); encodeErr != nil {
		h.logger.Error("failed to encode error response", zap.Error(encodeErr))
	}
}
