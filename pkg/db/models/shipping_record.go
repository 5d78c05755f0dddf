package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingRecord is one carrier consignment, keyed by the carrier's own
// consignment id so repeated booking webhooks collapse into one row.
type ShippingRecord struct {
	ConsignmentID  string    `gorm:"column:consignment_id;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	DisplayOrderID string    `gorm:"column:display_order_id;not null"`
	TrackingID     string    `gorm:"column:tracking_id;not null"`
	Status         string    `gorm:"column:status;not null;default:'booked'"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
