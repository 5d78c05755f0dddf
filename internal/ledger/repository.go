package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/pagination"
)

// ListFilter narrows ledger listings. Zero values mean no filtering.
type ListFilter struct {
	ConsignmentID  string
	DisplayOrderID string
	Limit          int
	Cursor         *pagination.Cursor
}

// Repository is the append-only store for ledger entries. There is no
// update or delete path; immutability is enforced by the interface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	List(ctx context.Context, filter ListFilter) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger entry required")
	}
	if !entry.EntryType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown ledger entry type")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending ledger entry")
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if filter.ConsignmentID != "" {
		query = query.Where("consignment_id = ?", filter.ConsignmentID)
	}
	if filter.DisplayOrderID != "" {
		query = query.Where("display_order_id = ?", filter.DisplayOrderID)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.LedgerEntry
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ledger entries")
	}
	return rows, nil
}
