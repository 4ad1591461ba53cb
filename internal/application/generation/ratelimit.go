// Package generation implements the recipe generation pipeline: admission
// control, the monthly usage ledger, prompt construction, response parsing,
// the quality gate and the bounded-concurrency batch executor, composed by
// Service as the single entry point for driving adapters.
package generation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/ports/outbound"
)

// Admission is the outcome of an admission check. RetryAfterSeconds is only
// meaningful when Allowed is false.
type Admission struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Admitter decides whether a caller's request may proceed, independent of the
// monthly quota.
type Admitter interface {
	Admit(ctx context.Context, callerID uuid.UUID) (Admission, error)
}

type window struct {
	count   int64
	resetAt time.Time
}

// Limiter is a fixed-window, per-caller rate limiter held in process memory.
// Windows are ephemeral and rebuildable; losing them on restart only resets
// limits. Bursts straddling a window boundary are a known imprecision of the
// fixed-window scheme.
type Limiter struct {
	maxRequests int64
	window      time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	windows map[uuid.UUID]*window

	// injectable clock for tests
	now func() time.Time
}

// NewLimiter creates an in-memory fixed-window limiter.
func NewLimiter(maxRequests int, windowSize time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		maxRequests: int64(maxRequests),
		window:      windowSize,
		logger:      logger.Named("rate-limiter"),
		windows:     make(map[uuid.UUID]*window),
		now:         time.Now,
	}
}

// Admit counts one request against the caller's current window. A request
// arriving after the window expired starts a fresh window and is admitted.
// Rejections carry the whole seconds left until the window resets.
func (l *Limiter) Admit(ctx context.Context, callerID uuid.UUID) (Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[callerID]
	if !ok || now.After(w.resetAt) {
		l.windows[callerID] = &window{count: 1, resetAt: now.Add(l.window)}
		return Admission{Allowed: true}, nil
	}

	if w.count < l.maxRequests {
		w.count++
		return Admission{Allowed: true}, nil
	}

	retryAfter := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	l.logger.Debug("request rejected by rate limiter",
		zap.String("caller_id", callerID.String()),
		zap.Int64("count", w.count),
		zap.Int("retry_after_seconds", retryAfter),
	)

	return Admission{Allowed: false, RetryAfterSeconds: retryAfter}, nil
}

// DistributedLimiter enforces the same fixed-window contract against a shared
// counter store, so admissions are counted once per caller across processes.
type DistributedLimiter struct {
	store       outbound.WindowStore
	maxRequests int64
	window      time.Duration
	logger      *zap.Logger
}

// NewDistributedLimiter creates a limiter backed by a shared window store.
func NewDistributedLimiter(store outbound.WindowStore, maxRequests int, windowSize time.Duration, logger *zap.Logger) *DistributedLimiter {
	return &DistributedLimiter{
		store:       store,
		maxRequests: int64(maxRequests),
		window:      windowSize,
		logger:      logger.Named("rate-limiter"),
	}
}

// Admit increments the caller's shared window counter. The store arms the
// window's expiry on the first increment; a count above the ceiling is
// rejected with the full window length as the retry hint, since the store
// does not expose the exact remaining time.
func (l *DistributedLimiter) Admit(ctx context.Context, callerID uuid.UUID) (Admission, error) {
	key := "ratelimit:generation:" + callerID.String()

	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		// fail open when the counter store is unreachable
		l.logger.Warn("window store unavailable, admitting request",
			zap.String("caller_id", callerID.String()),
			zap.Error(err),
		)
		return Admission{Allowed: true}, nil
	}

	if count > l.maxRequests {
		retryAfter := int(math.Ceil(l.window.Seconds()))
		return Admission{Allowed: false, RetryAfterSeconds: retryAfter}, nil
	}

	return Admission{Allowed: true}, nil
}
