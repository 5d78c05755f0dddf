package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/enums"
)

// OrderCreatedEvent signals a new order was committed by checkout.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID           `json:"order_id"`
	DisplayOrderID string              `json:"display_order_id"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Status         enums.OrderStatus   `json:"status"`
	TotalMinor     int64               `json:"total_minor"`
	Currency       enums.Currency      `json:"currency"`
}

// OrderStatusChangedEvent is emitted on every recorded status transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	DisplayOrderID string            `json:"display_order_id"`
	FromStatus     enums.OrderStatus `json:"from_status"`
	ToStatus       enums.OrderStatus `json:"to_status"`
	ChangedBy      string            `json:"changed_by"`
}

// OrderPaidEvent is emitted once when payment verification settles an order.
type OrderPaidEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	DisplayOrderID string    `json:"display_order_id"`
	Provider       string    `json:"provider"`
	ProviderRef    string    `json:"provider_ref"`
	AmountMinor    int64     `json:"amount_minor"`
	PaidAt         time.Time `json:"paid_at"`
}

// ShipmentBookedEvent reports a carrier consignment was recorded.
type ShipmentBookedEvent struct {
	ConsignmentID  string    `json:"consignment_id"`
	OrderID        uuid.UUID `json:"order_id"`
	DisplayOrderID string    `json:"display_order_id"`
	TrackingID     string    `json:"tracking_id"`
}

// LedgerEntryAddedEvent reports a financial outcome appended to the ledger.
type LedgerEntryAddedEvent struct {
	EntryID          uuid.UUID             `json:"entry_id"`
	ConsignmentID    string                `json:"consignment_id"`
	DisplayOrderID   string                `json:"display_order_id"`
	EntryType        enums.LedgerEntryType `json:"entry_type"`
	DeliveryFeeMinor int64                 `json:"delivery_fee_minor"`
	CollectedMinor   int64                 `json:"collected_minor"`
	NetPayoutMinor   int64                 `json:"net_payout_minor"`
}
