// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitalplate/v1/internal/domain/generation"
)

// GenerationService defines the recipe-generation use cases. This is the
// primary port that HTTP handlers and other driving adapters will use.
type GenerationService interface {
	// Commands - operations that spend generations
	GenerateRecipe(ctx context.Context, cmd GenerateCommand) (*GenerationResponse, error)
	GenerateBatch(ctx context.Context, cmd BatchCommand) (*BatchResponse, error)

	// Queries - operations that read state
	QuotaStatus(ctx context.Context, callerID uuid.UUID) (*QuotaStatusDTO, error)
	ListRecipes(ctx context.Context, callerID uuid.UUID, limit int) ([]*generation.Recipe, error)
}

// GenerateCommand contains data for a single recipe generation.
type GenerateCommand struct {
	CallerID        uuid.UUID
	Request         generation.Request
	ForceRegenerate bool
}

// BatchCommand contains data for a batch of independent generations on behalf
// of one caller.
type BatchCommand struct {
	CallerID        uuid.UUID
	Requests        []generation.Request
	ForceRegenerate bool
}

// GenerationResponse is the single-generation result. When the candidate
// failed the quality gate, Recipe stays populated and Validation carries the
// rejection reasons.
type GenerationResponse struct {
	Recipe              *generation.Candidate        `json:"recipe"`
	Validation          generation.ValidationOutcome `json:"validation"`
	FromCache           bool                         `json:"from_cache,omitempty"`
	CountedAgainstLimit bool                         `json:"counted_against_limit"`
	Usage               *QuotaStatusDTO              `json:"usage,omitempty"`
}

// BatchResponse aggregates per-request results in input order.
type BatchResponse struct {
	Results             []generation.Result `json:"results"`
	Succeeded           int                 `json:"succeeded"`
	Failed              int                 `json:"failed"`
	CountedAgainstLimit int                 `json:"counted_against_limit"`
	Usage               *QuotaStatusDTO     `json:"usage,omitempty"`
}

// QuotaStatusDTO reports a caller's monthly usage position. Remaining is
// "unbounded" for tiers without a limit, otherwise the decimal count.
type QuotaStatusDTO struct {
	Tier      string `json:"tier"`
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining string `json:"remaining"`
}
