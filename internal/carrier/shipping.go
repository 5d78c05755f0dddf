package carrier

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

// ShippingRepository stores carrier consignments. Upsert is keyed on the
// carrier's consignment id so duplicate booking webhooks collapse into one
// row.
type ShippingRepository interface {
	WithTx(tx *gorm.DB) ShippingRepository
	Upsert(ctx context.Context, record *models.ShippingRecord) error
	UpdateStatus(ctx context.Context, consignmentID, status string) error
	FindByConsignmentID(ctx context.Context, consignmentID string) (*models.ShippingRecord, error)
}

type shippingRepository struct {
	db *gorm.DB
}

func NewShippingRepository(conn *gorm.DB) ShippingRepository {
	return &shippingRepository{db: conn}
}

func (r *shippingRepository) WithTx(tx *gorm.DB) ShippingRepository {
	if tx == nil {
		return r
	}
	return &shippingRepository{db: tx}
}

func (r *shippingRepository) Upsert(ctx context.Context, record *models.ShippingRecord) error {
	if record == nil || record.ConsignmentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "consignment id required")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "consignment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tracking_id", "status", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting shipping record")
	}
	return nil
}

func (r *shippingRepository) UpdateStatus(ctx context.Context, consignmentID, status string) error {
	err := r.db.WithContext(ctx).
		Model(&models.ShippingRecord{}).
		Where("consignment_id = ?", consignmentID).
		Update("status", status).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating shipping record status")
	}
	return nil
}

func (r *shippingRepository) FindByConsignmentID(ctx context.Context, consignmentID string) (*models.ShippingRecord, error) {
	var record models.ShippingRecord
	err := r.db.WithContext(ctx).Where("consignment_id = ?", consignmentID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shipping record")
	}
	return &record, nil
}
