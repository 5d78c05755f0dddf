package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// ReservationRequest asks for qty units of a product or one of its
// variants. When VariantID is set the variant's stock is the only stock
// consulted.
type ReservationRequest struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	SKU       string
	Qty       int
}

// Engine decrements stock with conditional updates so oversell is
// impossible regardless of concurrency. It never takes in-process locks.
type Engine interface {
	WithTx(tx *gorm.DB) Engine
	Reserve(ctx context.Context, requests []ReservationRequest) error
}

type engine struct {
	db *gorm.DB
}

// NewEngine builds a reservation engine backed by the provided DB handle.
func NewEngine(db *gorm.DB) Engine {
	if db == nil {
		return nil
	}
	return &engine{db: db}
}

func (e *engine) WithTx(tx *gorm.DB) Engine {
	if tx == nil {
		return e
	}
	return &engine{db: tx}
}

// Reserve applies one conditional decrement per request. A decrement that
// matches zero rows means the item is missing, soft-deleted, or short on
// stock; the typed conflict error names the offending item so the caller
// can surface it after the enclosing transaction rolls back.
func (e *engine) Reserve(ctx context.Context, requests []ReservationRequest) error {
	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d for %s", req.Qty, req.SKU))
		}
		affected, err := e.decrement(ctx, req)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", req.SKU)).
				WithDetails(map[string]any{
					"sku":           req.SKU,
					"requested_qty": req.Qty,
				})
		}
	}
	return nil
}

func (e *engine) decrement(ctx context.Context, req ReservationRequest) (int64, error) {
	if req.VariantID != nil && *req.VariantID != uuid.Nil {
		res := e.db.WithContext(ctx).Exec(
			`UPDATE product_variants
			 SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND product_id = ? AND deleted_at IS NULL AND stock >= ?`,
			req.Qty, *req.VariantID, req.ProductID, req.Qty,
		)
		return res.RowsAffected, res.Error
	}

	// product-level stock only counts while the product has no variants
	res := e.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND has_variants = ? AND stock >= ?`,
		req.Qty, req.ProductID, false, req.Qty,
	)
	return res.RowsAffected, res.Error
}
