package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
)

const (
	ensureRetries = 3
	ensureBackoff = 10 * time.Millisecond
)

// Allocator hands out monotonically increasing numbers from named counter
// rows. Numbers are only unique, not gapless: a rolled-back caller burns
// the value it was issued.
type Allocator interface {
	WithTx(tx *gorm.DB) Allocator
	Next(ctx context.Context, name string) (int64, error)
}

type allocator struct {
	db *gorm.DB
}

// NewAllocator builds an allocator backed by the provided DB handle.
func NewAllocator(db *gorm.DB) Allocator {
	if db == nil {
		return nil
	}
	return &allocator{db: db}
}

func (a *allocator) WithTx(tx *gorm.DB) Allocator {
	if tx == nil {
		return a
	}
	return &allocator{db: tx}
}

// Next advances the named counter by one and returns the new value. The
// whole fetch-and-increment is a single UPDATE so concurrent callers
// serialize on the row instead of racing a read-modify-write. When the row
// does not exist yet it is inserted and the update retried.
func (a *allocator) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("counter name is required")
	}

	var value int64
	backoff := retry.WithMaxRetries(ensureRetries, retry.NewConstant(ensureBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res := a.db.WithContext(ctx).Raw(
			"UPDATE counters SET value = value + 1, updated_at = CURRENT_TIMESTAMP WHERE name = ? RETURNING value",
			name,
		).Scan(&value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := a.ensureCounter(ctx, name); err != nil {
			return err
		}
		return retry.RetryableError(fmt.Errorf("counter %q not yet visible", name))
	})
	if err != nil {
		return 0, fmt.Errorf("advancing counter %q: %w", name, err)
	}
	return value, nil
}

func (a *allocator) ensureCounter(ctx context.Context, name string) error {
	row := models.Counter{Name: name, Value: 0}
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}
