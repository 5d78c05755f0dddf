package orders

import (
	"fmt"

	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
)

// Amounts is the server-computed money breakdown for an order, in integer
// minor units. Client-supplied totals are never trusted; any mutation to
// items or discount goes back through Compute.
type Amounts struct {
	SubtotalMinor int64
	DiscountMinor int64
	ShippingMinor int64
	CODFeeMinor   int64
	TotalMinor    int64
}

// ComputeAmounts derives the full breakdown. Free items contribute zero to
// the subtotal regardless of their price fields; the discount is clamped to
// [0, subtotal]; shipping and the COD surcharge apply only to cod orders.
func ComputeAmounts(items []models.OrderItem, discountMinor int64, method enums.PaymentMethod, pricing config.PricingConfig) Amounts {
	var subtotal int64
	for _, item := range items {
		if item.IsFree {
			continue
		}
		subtotal += item.UnitPriceMinor * int64(item.Qty)
	}

	discount := discountMinor
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	var shipping, codFee int64
	if method == enums.PaymentMethodCOD {
		shipping = pricing.ShippingFeeMinor
		codFee = pricing.CODFeeMinor
	}

	return Amounts{
		SubtotalMinor: subtotal,
		DiscountMinor: discount,
		ShippingMinor: shipping,
		CODFeeMinor:   codFee,
		TotalMinor:    subtotal - discount + shipping + codFee,
	}
}

// FormatDisplayID renders the customer-facing order id. The prefix encodes
// the payment method so support staff can route inquiries at a glance.
func FormatDisplayID(method enums.PaymentMethod, sequence int64) string {
	return fmt.Sprintf("%s-%05d", method.DisplayPrefix(), sequence)
}
