package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// Ledger owns the per-caller monthly generation counters. Counts move only
// through its reset and commit operations: a generation is committed once,
// after it has both completed and passed the quality gate, never
// speculatively.
type Ledger struct {
	callers   outbound.CallerRepository
	freeLimit int64
	logger    *zap.Logger

	now func() time.Time
}

// NewLedger creates a usage ledger. freeLimit is the monthly ceiling for the
// FREE tier.
func NewLedger(callers outbound.CallerRepository, freeLimit int64, logger *zap.Logger) *Ledger {
	return &Ledger{
		callers:   callers,
		freeLimit: freeLimit,
		logger:    logger.Named("usage-ledger"),
		now:       time.Now,
	}
}

// Snapshot loads the caller's account and applies the monthly reset if the
// calendar month rolled over since the last reset. The returned account
// reflects the post-reset counters.
func (l *Ledger) Snapshot(ctx context.Context, callerID uuid.UUID) (*caller.Account, error) {
	account, err := l.callers.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	if monthRolledOver(account.LastResetAt, now) {
		if err := l.callers.ResetCounters(ctx, callerID, now); err != nil {
			return nil, errors.Wrap(err, "failed to reset monthly counters")
		}
		account.GenerationsThisMonth = 0
		account.LastResetAt = now
		l.logger.Info("monthly counters reset",
			zap.String("caller_id", callerID.String()),
		)
	}

	return account, nil
}

// LimitFor maps a tier to its monthly limit. Paid tiers have no ceiling.
func (l *Ledger) LimitFor(tier caller.Tier) int64 {
	switch tier {
	case caller.TierPremium, caller.TierFamily:
		return caller.QuotaUnlimited
	default:
		return l.freeLimit
	}
}

// CheckHeadroom admits a request for k generations only if the whole batch
// fits under the caller's limit. A denied batch dispatches nothing; the
// rejection states how many more the caller needs versus how many remain.
func (l *Ledger) CheckHeadroom(account *caller.Account, k int) error {
	limit := l.LimitFor(account.Tier)
	if caller.Unlimited(limit) {
		return nil
	}

	if account.GenerationsThisMonth+int64(k) <= limit {
		return nil
	}

	remaining := limit - account.GenerationsThisMonth
	if remaining < 0 {
		remaining = 0
	}

	l.logger.Info("quota headroom check denied",
		zap.String("caller_id", account.ID.String()),
		zap.Int("requested", k),
		zap.Int64("remaining", remaining),
		zap.Int64("limit", limit),
	)

	return errors.NewQuotaExceededError(k, remaining, limit)
}

// Commit spends n generations in one relative increment. n must be the count
// of items that both completed and passed the quality gate.
func (l *Ledger) Commit(ctx context.Context, callerID uuid.UUID, n int) error {
	if n <= 0 {
		return nil
	}

	if err := l.callers.IncrementGenerations(ctx, callerID, int64(n)); err != nil {
		return errors.Wrap(err, "failed to commit generation usage")
	}

	l.logger.Info("generation usage committed",
		zap.String("caller_id", callerID.String()),
		zap.Int("count", n),
	)
	return nil
}

// Remaining reports the caller's headroom, or the unlimited sentinel for
// tiers without a ceiling.
func (l *Ledger) Remaining(account *caller.Account) int64 {
	limit := l.LimitFor(account.Tier)
	if caller.Unlimited(limit) {
		return caller.QuotaUnlimited
	}
	remaining := limit - account.GenerationsThisMonth
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// monthRolledOver is the single reset policy: counters reset when the
// calendar month or year differs from the last reset, regardless of month
// length.
func monthRolledOver(lastReset, now time.Time) bool {
	return lastReset.Year() != now.Year() || lastReset.Month() != now.Month()
}
