package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment     OrderStatus = "pending_payment"
	OrderStatusPaymentNotVerified OrderStatus = "payment_not_verified"
	OrderStatusInvalidPayment     OrderStatus = "invalid_payment"
	OrderStatusProcessing         OrderStatus = "processing"
	OrderStatusReadyToPack        OrderStatus = "ready_to_pack"
	OrderStatusReadyToShip        OrderStatus = "ready_to_ship"
	OrderStatusCompleted          OrderStatus = "completed"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaymentNotVerified,
	OrderStatusInvalidPayment,
	OrderStatusProcessing,
	OrderStatusReadyToPack,
	OrderStatusReadyToShip,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// InitialOrderStatus returns the status a freshly created order starts in.
// COD orders go straight to processing; wallet payments wait for the
// gateway callback; QR transfers wait for manual verification.
func InitialOrderStatus(method PaymentMethod) OrderStatus {
	switch method {
	case PaymentMethodWallet:
		return OrderStatusPendingPayment
	case PaymentMethodQRPay:
		return OrderStatusPaymentNotVerified
	default:
		return OrderStatusProcessing
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
