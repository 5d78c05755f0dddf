package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/enums"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

// Order is the central aggregate produced by checkout. Amounts are always
// server-computed in integer minor units; the payment status moves to paid
// at most once and is never reverted by automated flows.
type Order struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayOrderID string    `gorm:"column:display_order_id;not null;uniqueIndex"`
	SequenceNo     int64     `gorm:"column:sequence_no;not null"`
	CustomerID     uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`

	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentProvider    *string             `gorm:"column:payment_provider"`
	PaymentProviderRef *string             `gorm:"column:payment_provider_ref;index"`
	PaymentDetails     json.RawMessage     `gorm:"column:payment_details;type:jsonb"`

	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;index"`
	CouponCode *string           `gorm:"column:coupon_code;index"`

	SubtotalMinor int64          `gorm:"column:subtotal_minor;not null"`
	DiscountMinor int64          `gorm:"column:discount_minor;not null;default:0"`
	ShippingMinor int64          `gorm:"column:shipping_minor;not null;default:0"`
	CODFeeMinor   int64          `gorm:"column:cod_fee_minor;not null;default:0"`
	TotalMinor    int64          `gorm:"column:total_minor;not null"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'BDT'"`

	ShippingAddress types.Address `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ShippingCarrier *string       `gorm:"column:shipping_carrier"`
	TrackingID      *string       `gorm:"column:tracking_id"`

	CompletedAt *time.Time `gorm:"column:completed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	Items      []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusLogs []OrderStatusLog `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
