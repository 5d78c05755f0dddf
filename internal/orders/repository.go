package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/pagination"
)

// Repository persists orders with their items and status logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByDisplayID(ctx context.Context, displayID string) (*models.Order, error)
	FindByProviderRef(ctx context.Context, providerRef string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	AppendStatusLog(ctx context.Context, log *models.OrderStatusLog) error
	MarkPaid(ctx context.Context, id uuid.UUID, provider, providerRef string) (bool, error)
	SetProviderRefIfUnset(ctx context.Context, id uuid.UUID, provider, providerRef string) error
	SetTrackingIfUnset(ctx context.Context, id uuid.UUID, carrier, trackingID string) error
}

// ListFilter narrows and paginates order listings.
type ListFilter struct {
	CustomerID uuid.UUID
	Status     string
	Limit      int
	Cursor     *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository backed by the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order is required")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	for i := range order.StatusLogs {
		if order.StatusLogs[i].ID == uuid.Nil {
			order.StatusLogs[i].ID = uuid.New()
		}
		order.StatusLogs[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOne(ctx, "orders.id = ?", id)
}

func (r *repository) FindByDisplayID(ctx context.Context, displayID string) (*models.Order, error) {
	return r.findOne(ctx, "orders.display_order_id = ?", displayID)
}

func (r *repository) FindByProviderRef(ctx context.Context, providerRef string) (*models.Order, error) {
	return r.findOne(ctx, "orders.payment_provider_ref = ?", providerRef)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if filter.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.Order
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	return rows, err
}

// Save persists the order's fulfillment columns from the caller's snapshot.
// The payment columns are omitted on purpose: MarkPaid and
// SetProviderRefIfUnset are their only writers, so a snapshot loaded before
// a concurrent paid flip can never downgrade it back to unpaid.
func (r *repository) Save(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order is required")
	}
	return r.db.WithContext(ctx).
		Omit("Items", "StatusLogs", "PaymentStatus", "PaymentProvider", "PaymentProviderRef").
		Save(order).Error
}

func (r *repository) AppendStatusLog(ctx context.Context, log *models.OrderStatusLog) error {
	if log == nil {
		return errors.New("status log is required")
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// MarkPaid flips payment_status to paid at most once. The guard clause
// means a concurrent or repeated verification can never downgrade or
// double-apply; the bool reports whether this call won the flip.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, provider, providerRef string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", id, "paid").
		Updates(map[string]any{
			"payment_status":       "paid",
			"payment_provider":     provider,
			"payment_provider_ref": providerRef,
		})
	return res.RowsAffected > 0, res.Error
}

// SetProviderRefIfUnset records which provider transaction a verification
// attempt matched against, without touching payment_status. Once a ref is
// recorded (by this or by MarkPaid) it stays put.
func (r *repository) SetProviderRefIfUnset(ctx context.Context, id uuid.UUID, provider, providerRef string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_provider_ref IS NULL", id).
		Updates(map[string]any{
			"payment_provider":     provider,
			"payment_provider_ref": providerRef,
		}).Error
}

func (r *repository) SetTrackingIfUnset(ctx context.Context, id uuid.UUID, carrier, trackingID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND (tracking_id IS NULL OR tracking_id = '')", id).
		Updates(map[string]any{
			"shipping_carrier": carrier,
			"tracking_id":      trackingID,
		}).Error
}
