package gorm

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitalplate/v1/internal/domain/caller"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

// CallerRepository implements the caller repository interface using GORM
type CallerRepository struct {
	db *gorm.DB
}

// NewCallerRepository creates a new caller repository
func NewCallerRepository(db *gorm.DB) outbound.CallerRepository {
	return &CallerRepository{db: db}
}

// FindByID finds a caller account by ID
func (r *CallerRepository) FindByID(ctx context.Context, id uuid.UUID) (*caller.Account, error) {
	var model CallerModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.NewCallerNotFoundError(id.String())
		}
		return nil, errors.NewDatabaseError("find caller", result.Error)
	}

	return &caller.Account{
		ID:                   model.ID,
		Tier:                 caller.Tier(model.Tier),
		GenerationsThisMonth: model.GenerationsThisMonth,
		LastResetAt:          model.LastResetAt,
	}, nil
}

// ResetCounters zeroes the monthly counters and stamps the reset time
func (r *CallerRepository) ResetCounters(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&CallerModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"generations_this_month": 0,
			"last_reset_at":          at,
		})
	if result.Error != nil {
		return errors.NewDatabaseError("reset caller counters", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewCallerNotFoundError(id.String())
	}
	return nil
}

// IncrementGenerations applies a relative delta to the monthly counter.
// The increment happens in SQL, not from request-local state, so concurrent
// commits for the same caller cannot lose updates.
func (r *CallerRepository) IncrementGenerations(ctx context.Context, id uuid.UUID, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&CallerModel{}).
		Where("id = ?", id).
		Update("generations_this_month", gorm.Expr("generations_this_month + ?", delta))
	if result.Error != nil {
		return errors.NewDatabaseError("increment caller generations", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewCallerNotFoundError(id.String())
	}
	return nil
}
