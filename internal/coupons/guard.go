package coupons

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// Guard admits coupon redemptions against the global and per-customer
// budgets. The global budget is consumed with a conditional increment so
// concurrent redemptions can never exceed it; the per-customer cap is a
// count of prior non-cancelled orders carrying the code, read inside the
// same transaction as order creation.
type Guard interface {
	WithTx(tx *gorm.DB) Guard
	Redeem(ctx context.Context, code string, customerID uuid.UUID) (*models.Coupon, error)
}

type guard struct {
	db *gorm.DB
}

// NewGuard builds a redemption guard backed by the provided DB handle.
func NewGuard(db *gorm.DB) Guard {
	if db == nil {
		return nil
	}
	return &guard{db: db}
}

func (g *guard) WithTx(tx *gorm.DB) Guard {
	if tx == nil {
		return g
	}
	return &guard{db: tx}
}

func (g *guard) Redeem(ctx context.Context, code string, customerID uuid.UUID) (*models.Coupon, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	var coupon models.Coupon
	err := g.db.WithContext(ctx).First(&coupon, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown coupon %s", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	if !coupon.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("coupon %s is not active", code))
	}

	if coupon.PerUserLimit > 0 && customerID != uuid.Nil {
		var used int64
		err := g.db.WithContext(ctx).Model(&models.Order{}).
			Where("customer_id = ? AND coupon_code = ? AND status <> ?", customerID, code, enums.OrderStatusCancelled).
			Count(&used).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting coupon usage")
		}
		if used >= int64(coupon.PerUserLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("coupon %s usage limit reached", code)).
				WithDetails(map[string]any{"per_user_limit": coupon.PerUserLimit})
		}
	}

	res := g.db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET redemptions_total = redemptions_total + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE code = ? AND active = ? AND (total_limit = 0 OR redemptions_total < total_limit)`,
		code, true,
	)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "consuming coupon budget")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("coupon %s limit reached", code))
	}

	coupon.RedemptionsTotal++
	return &coupon, nil
}
