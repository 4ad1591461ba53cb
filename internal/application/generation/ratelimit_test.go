package generation

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLimiterAdmitsUpToCeiling(t *testing.T) {
	limiter := NewLimiter(2, time.Minute, zap.NewNop())
	callerID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		admission, err := limiter.Admit(ctx, callerID)
		require.NoError(t, err)
		assert.True(t, admission.Allowed)
	}

	admission, err := limiter.Admit(ctx, callerID)
	require.NoError(t, err)
	assert.False(t, admission.Allowed)
	assert.Greater(t, admission.RetryAfterSeconds, 0)
	assert.LessOrEqual(t, admission.RetryAfterSeconds, 60)
}

func TestLimiterStartsFreshWindowAfterExpiry(t *testing.T) {
	limiter := NewLimiter(1, time.Minute, zap.NewNop())
	callerID := uuid.New()
	ctx := context.Background()

	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	admission, err := limiter.Admit(ctx, callerID)
	require.NoError(t, err)
	require.True(t, admission.Allowed)

	admission, err = limiter.Admit(ctx, callerID)
	require.NoError(t, err)
	require.False(t, admission.Allowed)
	assert.Equal(t, 60, admission.RetryAfterSeconds)

	current = current.Add(61 * time.Second)

	admission, err = limiter.Admit(ctx, callerID)
	require.NoError(t, err)
	assert.True(t, admission.Allowed)
}

func TestLimiterTracksCallersIndependently(t *testing.T) {
	limiter := NewLimiter(1, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := limiter.Admit(ctx, uuid.New())
	require.NoError(t, err)
	second, err := limiter.Admit(ctx, uuid.New())
	require.NoError(t, err)

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)
}

type fakeWindowStore struct {
	counts map[string]int64
	err    error
}

func (s *fakeWindowStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestDistributedLimiterRejectsAboveCeiling(t *testing.T) {
	store := &fakeWindowStore{}
	limiter := NewDistributedLimiter(store, 2, time.Minute, zap.NewNop())
	callerID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		admission, err := limiter.Admit(ctx, callerID)
		require.NoError(t, err)
		assert.True(t, admission.Allowed)
	}

	admission, err := limiter.Admit(ctx, callerID)
	require.NoError(t, err)
	assert.False(t, admission.Allowed)
	assert.Equal(t, 60, admission.RetryAfterSeconds)
}

func TestDistributedLimiterFailsOpen(t *testing.T) {
	store := &fakeWindowStore{err: stderrors.New("connection refused")}
	limiter := NewDistributedLimiter(store, 1, time.Minute, zap.NewNop())

	admission, err := limiter.Admit(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, admission.Allowed)
}
