package generation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/vitalplate/v1/internal/domain/generation"
)

const (
	defaultConcurrency = 3
	defaultChunkDelay  = 100 * time.Millisecond
)

// Executor runs independent generation tasks in chunks of bounded
// concurrency, pacing between chunks to stay polite to the upstream
// provider. It applies no business validation of its own: what "success"
// means semantically is the caller's judgment, captured inside each task
// body.
type Executor struct {
	concurrency int
	chunkDelay  time.Duration
	logger      *zap.Logger
}

// NewExecutor creates a batch executor. Non-positive settings fall back to
// the defaults.
func NewExecutor(concurrency int, chunkDelay time.Duration, logger *zap.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if chunkDelay < 0 {
		chunkDelay = defaultChunkDelay
	}
	return &Executor{
		concurrency: concurrency,
		chunkDelay:  chunkDelay,
		logger:      logger.Named("batch-executor"),
	}
}

// Run executes all tasks and returns one result per task, in input order
// regardless of completion order. Within a chunk every task settles
// independently: one task's failure never cancels its siblings. A cancelled
// context stops new chunks from dispatching while already-dispatched tasks
// settle naturally; undispatched tasks are reported as failed.
func (e *Executor) Run(ctx context.Context, tasks []domain.Task) []domain.Result {
	results := make([]domain.Result, len(tasks))

	for start := 0; start < len(tasks); start += e.concurrency {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(tasks); i++ {
				results[i] = domain.Result{
					ID:    tasks[i].ID,
					Error: fmt.Sprintf("batch cancelled before dispatch: %v", err),
				}
			}
			e.logger.Info("batch cancelled, remaining chunks skipped",
				zap.Int("dispatched", start),
				zap.Int("skipped", len(tasks)-start),
			)
			return results
		}

		end := start + e.concurrency
		if end > len(tasks) {
			end = len(tasks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = runTask(tasks[idx])
			}(i)
		}
		wg.Wait()

		if end < len(tasks) && e.chunkDelay > 0 {
			timer := time.NewTimer(e.chunkDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
	}

	return results
}

// runTask settles one task, converting an error or panic into a failed
// result and measuring duration from dispatch to settlement.
func runTask(task domain.Task) (result domain.Result) {
	start := time.Now()
	result.ID = task.ID

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Recipe = nil
			result.Error = fmt.Sprintf("task panicked: %v", r)
		}
		result.DurationMS = time.Since(start).Milliseconds()
	}()

	candidate, err := task.Run()
	if err != nil {
		result.Error = err.Error()
		// a quality-rejected candidate stays visible to the caller
		result.Recipe = candidate
		return result
	}

	result.Success = true
	result.Recipe = candidate
	return result
}
