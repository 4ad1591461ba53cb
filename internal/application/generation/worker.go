package generation

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// defaultGenerationTimeout is the wall-clock deadline for one completion.
const defaultGenerationTimeout = 30 * time.Second

// Worker runs one generation end to end: prompt, completion under a
// deadline, parse. It never judges validity and never persists anything;
// those decisions belong to the orchestrator.
type Worker struct {
	provider outbound.CompletionProvider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewWorker creates a single-generation worker. A non-positive timeout falls
// back to the default deadline.
func NewWorker(provider outbound.CompletionProvider, timeout time.Duration, logger *zap.Logger) *Worker {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Worker{
		provider: provider,
		timeout:  timeout,
		logger:   logger.Named("generation-worker"),
	}
}

// Generate builds the prompt, invokes the provider under the worker's
// deadline and parses the response into a candidate. Deadline expiry becomes
// a typed timeout error; no retries happen at this layer.
func (w *Worker) Generate(ctx context.Context, req domain.Request) (*domain.Candidate, error) {
	prompt := BuildPrompt(req)

	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	raw, err := w.provider.Complete(cctx, prompt)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			w.logger.Warn("completion deadline exceeded",
				zap.String("meal_name", req.MealName),
				zap.Duration("timeout", w.timeout),
			)
			return nil, errors.NewProviderTimeoutError(err)
		}
		return nil, err
	}

	candidate, err := ParseCandidate(raw, req)
	if err != nil {
		return nil, err
	}

	candidate.Model = w.provider.Model()

	w.logger.Debug("generation completed",
		zap.String("meal_name", req.MealName),
		zap.String("title", candidate.Title),
		zap.Duration("duration", time.Since(start)),
	)

	return candidate, nil
}
