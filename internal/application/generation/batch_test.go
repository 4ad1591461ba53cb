package generation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/vitalplate/v1/internal/domain/generation"
)

func namedTask(id string, run func() (*domain.Candidate, error)) domain.Task {
	return domain.Task{ID: id, Run: run}
}

func TestExecutorPreservesInputOrder(t *testing.T) {
	executor := NewExecutor(2, 0, zap.NewNop())

	var tasks []domain.Task
	for i := 0; i < 7; i++ {
		i := i
		tasks = append(tasks, namedTask(strconv.Itoa(i), func() (*domain.Candidate, error) {
			// later tasks finish first
			time.Sleep(time.Duration(7-i) * time.Millisecond)
			return &domain.Candidate{Title: fmt.Sprintf("Recipe %d", i)}, nil
		}))
	}

	results := executor.Run(context.Background(), tasks)

	require.Len(t, results, 7)
	for i, result := range results {
		assert.Equal(t, strconv.Itoa(i), result.ID)
		require.True(t, result.Success)
		assert.Equal(t, fmt.Sprintf("Recipe %d", i), result.Recipe.Title)
	}
}

func TestExecutorIsolatesFailures(t *testing.T) {
	executor := NewExecutor(3, 0, zap.NewNop())

	tasks := []domain.Task{
		namedTask("a", func() (*domain.Candidate, error) { return &domain.Candidate{Title: "A"}, nil }),
		namedTask("b", func() (*domain.Candidate, error) { return nil, stderrors.New("provider unavailable") }),
		namedTask("c", func() (*domain.Candidate, error) { return &domain.Candidate{Title: "C"}, nil }),
		namedTask("d", func() (*domain.Candidate, error) { return &domain.Candidate{Title: "D"}, nil }),
		namedTask("e", func() (*domain.Candidate, error) { return &domain.Candidate{Title: "E"}, nil }),
	}

	results := executor.Run(context.Background(), tasks)

	require.Len(t, results, 5)
	assert.False(t, results[1].Success)
	assert.Equal(t, "provider unavailable", results[1].Error)
	for _, i := range []int{0, 2, 3, 4} {
		assert.True(t, results[i].Success, "task %d", i)
	}
}

func TestExecutorKeepsRejectedCandidateVisible(t *testing.T) {
	executor := NewExecutor(1, 0, zap.NewNop())

	rejected := &domain.Candidate{Title: "Healthy Meal"}
	tasks := []domain.Task{
		namedTask("a", func() (*domain.Candidate, error) {
			return rejected, stderrors.New("quality check failed")
		}),
	}

	results := executor.Run(context.Background(), tasks)

	require.False(t, results[0].Success)
	assert.Equal(t, rejected, results[0].Recipe)
}

func TestExecutorRecoversFromPanic(t *testing.T) {
	executor := NewExecutor(2, 0, zap.NewNop())

	tasks := []domain.Task{
		namedTask("a", func() (*domain.Candidate, error) { panic("boom") }),
		namedTask("b", func() (*domain.Candidate, error) { return &domain.Candidate{Title: "B"}, nil }),
	}

	results := executor.Run(context.Background(), tasks)

	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "task panicked")
	assert.Nil(t, results[0].Recipe)
	assert.True(t, results[1].Success)
}

func TestExecutorCancellationStopsNewChunks(t *testing.T) {
	executor := NewExecutor(1, 0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var dispatched atomic.Int32
	tasks := []domain.Task{
		namedTask("a", func() (*domain.Candidate, error) {
			dispatched.Add(1)
			cancel()
			return &domain.Candidate{Title: "A"}, nil
		}),
		namedTask("b", func() (*domain.Candidate, error) {
			dispatched.Add(1)
			return &domain.Candidate{Title: "B"}, nil
		}),
		namedTask("c", func() (*domain.Candidate, error) {
			dispatched.Add(1)
			return &domain.Candidate{Title: "C"}, nil
		}),
	}

	results := executor.Run(ctx, tasks)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, int32(1), dispatched.Load())
	for _, i := range []int{1, 2} {
		assert.False(t, results[i].Success)
		assert.Contains(t, results[i].Error, "batch cancelled before dispatch")
	}
}

func TestExecutorEmptyBatch(t *testing.T) {
	executor := NewExecutor(3, 0, zap.NewNop())

	results := executor.Run(context.Background(), nil)

	assert.Empty(t, results)
}
