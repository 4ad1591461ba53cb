// Package memory provides in-memory repository implementations for
// development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// CallerRepository is a thread-safe in-memory caller store.
type CallerRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*caller.Account
}

// NewCallerRepository creates an empty in-memory caller repository.
func NewCallerRepository() *CallerRepository {
	return &CallerRepository{accounts: make(map[uuid.UUID]*caller.Account)}
}

var _ outbound.CallerRepository = (*CallerRepository)(nil)

// Seed inserts or replaces an account.
func (r *CallerRepository) Seed(account *caller.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *account
	r.accounts[account.ID] = &copied
}

func (r *CallerRepository) FindByID(ctx context.Context, id uuid.UUID) (*caller.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, errors.NewCallerNotFoundError(id.String())
	}
	copied := *account
	return &copied, nil
}

func (r *CallerRepository) ResetCounters(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return errors.NewCallerNotFoundError(id.String())
	}
	account.GenerationsThisMonth = 0
	account.LastResetAt = at
	return nil
}

func (r *CallerRepository) IncrementGenerations(ctx context.Context, id uuid.UUID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return errors.NewCallerNotFoundError(id.String())
	}
	account.GenerationsThisMonth += delta
	return nil
}

// RecipeStore is a thread-safe in-memory recipe store keyed by target.
type RecipeStore struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]*generation.Recipe
}

// NewRecipeStore creates an empty in-memory recipe store.
func NewRecipeStore() *RecipeStore {
	return &RecipeStore{recipes: make(map[uuid.UUID]*generation.Recipe)}
}

var _ outbound.RecipeStore = (*RecipeStore)(nil)

func (s *RecipeStore) Save(ctx context.Context, recipe *generation.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *recipe
	s.recipes[recipe.TargetID] = &copied
	return nil
}

func (s *RecipeStore) FindByTarget(ctx context.Context, targetID uuid.UUID) (*generation.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[targetID]
	if !ok {
		return nil, nil
	}
	copied := *recipe
	return &copied, nil
}

func (s *RecipeStore) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*generation.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recipes []*generation.Recipe
	for _, recipe := range s.recipes {
		if recipe.OwnerID != ownerID {
			continue
		}
		copied := *recipe
		recipes = append(recipes, &copied)
		if limit > 0 && len(recipes) >= limit {
			break
		}
	}
	return recipes, nil
}
