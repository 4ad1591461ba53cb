package generation

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/domain/caller"
	domain "github.com/vitalplate/v1/internal/domain/generation"
	"github.com/vitalplate/v1/internal/ports/inbound"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// defaultFreeBatchLimit caps batch size for FREE-tier callers.
const defaultFreeBatchLimit = 5

// Service composes the generation pipeline: rate limiter admission, ledger
// headroom pre-check, worker dispatch (single or batched), quality gating
// and the single post-hoc usage commit. It is the only writer of quota
// state, and it commits exactly the number of generations that both
// completed and passed the quality gate.
type Service struct {
	limiter  Admitter
	ledger   *Ledger
	worker   *Worker
	executor *Executor
	gate     *QualityGate
	recipes  outbound.RecipeStore
	batchCap int
	logger   *zap.Logger
}

// NewService wires the generation service. batchCap limits FREE-tier batch
// size; a non-positive value falls back to the default.
func NewService(
	limiter Admitter,
	ledger *Ledger,
	worker *Worker,
	executor *Executor,
	recipes outbound.RecipeStore,
	batchCap int,
	logger *zap.Logger,
) *Service {
	if batchCap <= 0 {
		batchCap = defaultFreeBatchLimit
	}
	return &Service{
		limiter:  limiter,
		ledger:   ledger,
		worker:   worker,
		executor: executor,
		gate:     NewQualityGate(),
		recipes:  recipes,
		batchCap: batchCap,
		logger:   logger.Named("generation-service"),
	}
}

var _ inbound.GenerationService = (*Service)(nil)

// GenerateRecipe runs one generation for the caller. A previously stored
// recipe for the same target is returned without spending quota unless the
// caller forces regeneration. Only a candidate that passes the quality gate
// is persisted and committed to the ledger.
func (s *Service) GenerateRecipe(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationResponse, error) {
	if err := s.admit(ctx, cmd.CallerID); err != nil {
		return nil, err
	}

	account, err := s.ledger.Snapshot(ctx, cmd.CallerID)
	if err != nil {
		return nil, err
	}

	if !cmd.ForceRegenerate {
		if stored, err := s.recipes.FindByTarget(ctx, cmd.Request.TargetID); err == nil && stored != nil {
			return &inbound.GenerationResponse{
				Recipe:     stored.AsCandidate(),
				Validation: domain.ValidationOutcome{Valid: true},
				FromCache:  true,
				Usage:      s.quotaStatus(account),
			}, nil
		}
	}

	if err := s.ledger.CheckHeadroom(account, 1); err != nil {
		return nil, err
	}

	candidate, err := s.worker.Generate(ctx, cmd.Request)
	if err != nil {
		return nil, err
	}

	outcome := s.gate.Validate(candidate, cmd.Request)
	if outcome.Valid {
		recipe := domain.FromCandidate(candidate, cmd.Request.TargetID, cmd.CallerID)
		if err := s.recipes.Save(ctx, recipe); err != nil {
			return nil, errors.Wrap(err, "failed to persist generated recipe")
		}
		if err := s.ledger.Commit(ctx, cmd.CallerID, 1); err != nil {
			return nil, err
		}
		account.GenerationsThisMonth++
	} else {
		s.logger.Info("candidate rejected by quality gate",
			zap.String("caller_id", cmd.CallerID.String()),
			zap.String("title", candidate.Title),
			zap.Strings("reasons", outcome.Reasons),
		)
	}

	return &inbound.GenerationResponse{
		Recipe:              candidate,
		Validation:          outcome,
		CountedAgainstLimit: outcome.Valid,
		Usage:               s.quotaStatus(account),
	}, nil
}

// GenerateBatch runs independent generations for one caller. The whole batch
// is pre-checked against the caller's remaining quota before any task
// dispatches, and usage is committed once, after the batch settles, by the
// count of quality-gate-passing successes.
func (s *Service) GenerateBatch(ctx context.Context, cmd inbound.BatchCommand) (*inbound.BatchResponse, error) {
	if len(cmd.Requests) == 0 {
		return nil, errors.NewBadRequestError("batch contains no generation requests")
	}

	if err := s.admit(ctx, cmd.CallerID); err != nil {
		return nil, err
	}

	account, err := s.ledger.Snapshot(ctx, cmd.CallerID)
	if err != nil {
		return nil, err
	}

	if account.Tier == caller.TierFree && len(cmd.Requests) > s.batchCap {
		return nil, errors.NewBatchSizeLimitError(len(cmd.Requests), s.batchCap)
	}

	results := make([]domain.Result, len(cmd.Requests))
	cached := make([]bool, len(cmd.Requests))

	// Serve targets that already have a stored recipe without spending a
	// task or quota, then dispatch only the misses.
	var tasks []domain.Task
	var taskIndex []int
	for i, req := range cmd.Requests {
		if !cmd.ForceRegenerate {
			if stored, err := s.recipes.FindByTarget(ctx, req.TargetID); err == nil && stored != nil {
				results[i] = domain.Result{
					ID:      req.TargetID.String(),
					Success: true,
					Recipe:  stored.AsCandidate(),
				}
				cached[i] = true
				continue
			}
		}
		tasks = append(tasks, s.buildTask(ctx, req))
		taskIndex = append(taskIndex, i)
	}

	if err := s.ledger.CheckHeadroom(account, len(tasks)); err != nil {
		return nil, err
	}

	for j, result := range s.executor.Run(ctx, tasks) {
		results[taskIndex[j]] = result
	}

	// Persist and commit only fresh, quality-gate-passing successes, as a
	// single aggregate increment.
	committed := 0
	for i, result := range results {
		if !result.Success || cached[i] || result.Recipe == nil {
			continue
		}
		recipe := domain.FromCandidate(result.Recipe, cmd.Requests[i].TargetID, cmd.CallerID)
		if err := s.recipes.Save(ctx, recipe); err != nil {
			s.logger.Error("failed to persist batch recipe",
				zap.String("target_id", cmd.Requests[i].TargetID.String()),
				zap.Error(err),
			)
			continue
		}
		committed++
	}

	if err := s.ledger.Commit(ctx, cmd.CallerID, committed); err != nil {
		return nil, err
	}
	account.GenerationsThisMonth += int64(committed)

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Success {
			succeeded++
		} else {
			failed++
		}
	}

	s.logger.Info("batch completed",
		zap.String("caller_id", cmd.CallerID.String()),
		zap.Int("requested", len(cmd.Requests)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Int("committed", committed),
	)

	return &inbound.BatchResponse{
		Results:             results,
		Succeeded:           succeeded,
		Failed:              failed,
		CountedAgainstLimit: committed,
		Usage:               s.quotaStatus(account),
	}, nil
}

// QuotaStatus reports the caller's monthly usage position, applying the
// monthly reset if due.
func (s *Service) QuotaStatus(ctx context.Context, callerID uuid.UUID) (*inbound.QuotaStatusDTO, error) {
	account, err := s.ledger.Snapshot(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.quotaStatus(account), nil
}

// ListRecipes returns the caller's most recently generated recipes.
func (s *Service) ListRecipes(ctx context.Context, callerID uuid.UUID, limit int) ([]*domain.Recipe, error) {
	recipes, err := s.recipes.FindByOwner(ctx, callerID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recipes")
	}
	return recipes, nil
}

// buildTask wraps one request as an executor task. A quality rejection is an
// error with the candidate still attached, so the batch result keeps the
// rejected recipe visible.
func (s *Service) buildTask(ctx context.Context, req domain.Request) domain.Task {
	return domain.Task{
		ID: req.TargetID.String(),
		Run: func() (*domain.Candidate, error) {
			candidate, err := s.worker.Generate(ctx, req)
			if err != nil {
				return nil, err
			}
			outcome := s.gate.Validate(candidate, req)
			if !outcome.Valid {
				return candidate, errors.NewQualityRejectedError(outcome.Reasons)
			}
			return candidate, nil
		},
	}
}

func (s *Service) admit(ctx context.Context, callerID uuid.UUID) error {
	admission, err := s.limiter.Admit(ctx, callerID)
	if err != nil {
		return errors.Wrap(err, "rate limit check failed")
	}
	if !admission.Allowed {
		return errors.NewRateLimitedError(admission.RetryAfterSeconds)
	}
	return nil
}

func (s *Service) quotaStatus(account *caller.Account) *inbound.QuotaStatusDTO {
	limit := s.ledger.LimitFor(account.Tier)
	remaining := "unbounded"
	if !caller.Unlimited(limit) {
		remaining = strconv.FormatInt(s.ledger.Remaining(account), 10)
	}
	return &inbound.QuotaStatusDTO{
		Tier:      string(account.Tier),
		Used:      account.GenerationsThisMonth,
		Limit:     limit,
		Remaining: remaining,
	}
}
