package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/enums"
)

// OrderStatusLog is the append-only audit trail of status transitions.
type OrderStatusLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	FromStatus enums.OrderStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus   enums.OrderStatus `gorm:"column:to_status;type:text;not null"`
	ChangedBy  string            `gorm:"column:changed_by;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
