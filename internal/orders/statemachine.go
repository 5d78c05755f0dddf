package orders

import (
	"fmt"
	"time"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// ApplyTransition mutates the order in memory: status, terminal timestamp
// stamps, and an audit log row describing the change. Re-entering the
// current status is a no-op (nil log, no re-stamp), which is what makes
// duplicate webhook deliveries harmless. Persistence is the caller's job.
func ApplyTransition(order *models.Order, to enums.OrderStatus, changedBy string, at time.Time) (*models.OrderStatusLog, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", to))
	}
	if changedBy == "" {
		changedBy = "system"
	}
	if at.IsZero() {
		at = time.Now()
	}

	if order.Status == to {
		return nil, nil
	}

	log := &models.OrderStatusLog{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   to,
		ChangedBy:  changedBy,
		CreatedAt:  at,
	}
	order.Status = to

	switch to {
	case enums.OrderStatusCompleted:
		if order.CompletedAt == nil {
			stamp := at
			order.CompletedAt = &stamp
		}
	case enums.OrderStatusCancelled:
		if order.CancelledAt == nil {
			stamp := at
			order.CancelledAt = &stamp
		}
	}

	return log, nil
}
