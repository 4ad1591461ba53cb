package generation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/infrastructure/persistence/memory"
	"github.com/vitalplate/v1/pkg/errors"
)

func seededLedger(t *testing.T, account *caller.Account, freeLimit int64) (*Ledger, *memory.CallerRepository) {
	t.Helper()
	repo := memory.NewCallerRepository()
	repo.Seed(account)
	return NewLedger(repo, freeLimit, zap.NewNop()), repo
}

func TestLedgerSnapshotResetsOnMonthRollover(t *testing.T) {
	callerID := uuid.New()
	account := &caller.Account{
		ID:                   callerID,
		Tier:                 caller.TierFree,
		GenerationsThisMonth: 6,
		LastResetAt:          time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	ledger, repo := seededLedger(t, account, 7)
	now := time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }

	snapshot, err := ledger.Snapshot(context.Background(), callerID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), snapshot.GenerationsThisMonth)
	assert.Equal(t, now, snapshot.LastResetAt)

	stored, err := repo.FindByID(context.Background(), callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.GenerationsThisMonth)
}

func TestLedgerSnapshotKeepsCountersWithinMonth(t *testing.T) {
	callerID := uuid.New()
	ledger, _ := seededLedger(t, &caller.Account{
		ID:                   callerID,
		Tier:                 caller.TierFree,
		GenerationsThisMonth: 4,
		LastResetAt:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}, 7)
	ledger.now = func() time.Time { return time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC) }

	snapshot, err := ledger.Snapshot(context.Background(), callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snapshot.GenerationsThisMonth)
}

func TestLedgerSnapshotUnknownCaller(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 7, zap.NewNop())

	_, err := ledger.Snapshot(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeCallerNotFound))
}

func TestLedgerLimitFor(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 7, zap.NewNop())

	assert.Equal(t, int64(7), ledger.LimitFor(caller.TierFree))
	assert.Equal(t, caller.QuotaUnlimited, ledger.LimitFor(caller.TierPremium))
	assert.Equal(t, caller.QuotaUnlimited, ledger.LimitFor(caller.TierFamily))
}

func TestLedgerCheckHeadroomWholeBatch(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 5, zap.NewNop())
	account := &caller.Account{
		ID:                   uuid.New(),
		Tier:                 caller.TierFree,
		GenerationsThisMonth: 4,
	}

	assert.NoError(t, ledger.CheckHeadroom(account, 1))

	err := ledger.CheckHeadroom(account, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeQuotaExceeded))
	assert.Contains(t, err.Error(), "need 3 more, only 1 remaining")
}

func TestLedgerCheckHeadroomUnlimitedTier(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 5, zap.NewNop())
	account := &caller.Account{
		ID:                   uuid.New(),
		Tier:                 caller.TierPremium,
		GenerationsThisMonth: 9000,
	}

	assert.NoError(t, ledger.CheckHeadroom(account, 100))
}

func TestLedgerCommitSingleIncrement(t *testing.T) {
	callerID := uuid.New()
	ledger, repo := seededLedger(t, &caller.Account{
		ID:          callerID,
		Tier:        caller.TierFree,
		LastResetAt: time.Now(),
	}, 7)

	require.NoError(t, ledger.Commit(context.Background(), callerID, 3))

	account, err := repo.FindByID(context.Background(), callerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), account.GenerationsThisMonth)
}

func TestLedgerCommitZeroIsNoop(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 7, zap.NewNop())

	assert.NoError(t, ledger.Commit(context.Background(), uuid.New(), 0))
	assert.NoError(t, ledger.Commit(context.Background(), uuid.New(), -2))
}

func TestLedgerRemaining(t *testing.T) {
	ledger := NewLedger(memory.NewCallerRepository(), 7, zap.NewNop())

	free := &caller.Account{Tier: caller.TierFree, GenerationsThisMonth: 5}
	assert.Equal(t, int64(2), ledger.Remaining(free))

	over := &caller.Account{Tier: caller.TierFree, GenerationsThisMonth: 9}
	assert.Equal(t, int64(0), ledger.Remaining(over))

	premium := &caller.Account{Tier: caller.TierPremium}
	assert.Equal(t, caller.QuotaUnlimited, ledger.Remaining(premium))
}
