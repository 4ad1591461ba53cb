package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/pkg/errors"
)

func TestCallerRepositoryLifecycle(t *testing.T) {
	repo := NewCallerRepository()
	ctx := context.Background()
	callerID := uuid.New()

	_, err := repo.FindByID(ctx, callerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeCallerNotFound))

	repo.Seed(&caller.Account{
		ID:                   callerID,
		Tier:                 caller.TierFree,
		GenerationsThisMonth: 2,
		LastResetAt:          time.Now(),
	})

	account, err := repo.FindByID(ctx, callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), account.GenerationsThisMonth)

	// mutating the returned copy must not touch the stored account
	account.GenerationsThisMonth = 99
	fresh, err := repo.FindByID(ctx, callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.GenerationsThisMonth)

	require.NoError(t, repo.IncrementGenerations(ctx, callerID, 3))
	after, err := repo.FindByID(ctx, callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), after.GenerationsThisMonth)

	resetAt := time.Now().Add(time.Hour)
	require.NoError(t, repo.ResetCounters(ctx, callerID, resetAt))
	reset, err := repo.FindByID(ctx, callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reset.GenerationsThisMonth)
	assert.Equal(t, resetAt, reset.LastResetAt)
}

func TestRecipeStoreSaveAndFind(t *testing.T) {
	store := NewRecipeStore()
	ctx := context.Background()
	targetID := uuid.New()
	ownerID := uuid.New()

	missing, err := store.FindByTarget(ctx, targetID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	recipe := &generation.Recipe{
		ID:       uuid.New(),
		TargetID: targetID,
		OwnerID:  ownerID,
		Title:    "Miso Glazed Eggplant",
	}
	require.NoError(t, store.Save(ctx, recipe))

	found, err := store.FindByTarget(ctx, targetID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Miso Glazed Eggplant", found.Title)

	// saving the same target again replaces the stored recipe
	recipe.Title = "Miso Glazed Eggplant v2"
	require.NoError(t, store.Save(ctx, recipe))
	replaced, err := store.FindByTarget(ctx, targetID)
	require.NoError(t, err)
	assert.Equal(t, "Miso Glazed Eggplant v2", replaced.Title)

	byOwner, err := store.FindByOwner(ctx, ownerID, 10)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	none, err := store.FindByOwner(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
