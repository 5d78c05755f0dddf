package enums

import "fmt"

// PaymentMethod identifies how a shopper pays for an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodQRPay  PaymentMethod = "qrpay"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodWallet,
	PaymentMethodQRPay,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// DisplayPrefix returns the display-order-id prefix for the method.
// Prefixes are part of the public order numbering contract and must
// never change once assigned.
func (p PaymentMethod) DisplayPrefix() string {
	switch p {
	case PaymentMethodCOD:
		return "AXC"
	case PaymentMethodWallet:
		return "AXW"
	case PaymentMethodQRPay:
		return "AXQ"
	default:
		return "AXC"
	}
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
