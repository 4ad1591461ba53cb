// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/domain/generation"
)

// CompletionProvider defines the interface for the model backend that turns a
// prompt into raw text. Implementations own their own request deadline and
// map transport failures to the application error taxonomy.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// CallerRepository defines the interface for usage-ledger persistence.
// IncrementGenerations must apply a relative delta so concurrent commits
// cannot lose counts to a read-modify-write race.
type CallerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*caller.Account, error)
	ResetCounters(ctx context.Context, id uuid.UUID, at time.Time) error
	IncrementGenerations(ctx context.Context, id uuid.UUID, delta int64) error
}

// RecipeStore defines the interface for persisting validated recipes.
type RecipeStore interface {
	Save(ctx context.Context, recipe *generation.Recipe) error
	FindByTarget(ctx context.Context, targetID uuid.UUID) (*generation.Recipe, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*generation.Recipe, error)
}

// WindowStore defines the interface for fixed-window request counting. Incr
// bumps the counter for key and returns the new count; the first increment of
// a window arms its expiry.
type WindowStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
