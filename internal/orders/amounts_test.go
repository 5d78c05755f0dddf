package orders

import (
	"testing"

	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
)

var testPricing = config.PricingConfig{
	Currency:         "BDT",
	ShippingFeeMinor: 100,
	CODFeeMinor:      50,
}

func twoItemCart() []models.OrderItem {
	return []models.OrderItem{
		{Name: "Shirt", SKU: "SHIRT-1", UnitPriceMinor: 500, Qty: 2},
		{Name: "Shoes", SKU: "SHOES-1", UnitPriceMinor: 1200, Qty: 1},
	}
}

func TestComputeAmountsCOD(t *testing.T) {
	got := ComputeAmounts(twoItemCart(), 0, enums.PaymentMethodCOD, testPricing)

	if got.SubtotalMinor != 2200 {
		t.Fatalf("expected subtotal 2200, got %d", got.SubtotalMinor)
	}
	if got.ShippingMinor != 100 || got.CODFeeMinor != 50 {
		t.Fatalf("expected cod fees 100/50, got %d/%d", got.ShippingMinor, got.CODFeeMinor)
	}
	if got.TotalMinor != 2350 {
		t.Fatalf("expected total 2350, got %d", got.TotalMinor)
	}
}

func TestComputeAmountsWalletSkipsCODFees(t *testing.T) {
	got := ComputeAmounts(twoItemCart(), 0, enums.PaymentMethodWallet, testPricing)

	if got.ShippingMinor != 0 || got.CODFeeMinor != 0 {
		t.Fatalf("wallet orders must not carry cod fees, got %d/%d", got.ShippingMinor, got.CODFeeMinor)
	}
	if got.TotalMinor != 2200 {
		t.Fatalf("expected total 2200, got %d", got.TotalMinor)
	}
}

func TestComputeAmountsFreeItemsContributeZero(t *testing.T) {
	items := append(twoItemCart(), models.OrderItem{
		Name: "Gift", SKU: "GIFT-1", UnitPriceMinor: 999, Qty: 3, IsFree: true,
	})
	got := ComputeAmounts(items, 0, enums.PaymentMethodWallet, testPricing)

	if got.SubtotalMinor != 2200 {
		t.Fatalf("free items must not affect subtotal, got %d", got.SubtotalMinor)
	}
}

func TestComputeAmountsDiscountClamped(t *testing.T) {
	got := ComputeAmounts(twoItemCart(), 5000, enums.PaymentMethodWallet, testPricing)
	if got.DiscountMinor != 2200 {
		t.Fatalf("discount should clamp to subtotal, got %d", got.DiscountMinor)
	}
	if got.TotalMinor != 0 {
		t.Fatalf("expected zero total, got %d", got.TotalMinor)
	}

	got = ComputeAmounts(twoItemCart(), -10, enums.PaymentMethodWallet, testPricing)
	if got.DiscountMinor != 0 {
		t.Fatalf("negative discount should clamp to zero, got %d", got.DiscountMinor)
	}
}

func TestFormatDisplayID(t *testing.T) {
	cases := []struct {
		method enums.PaymentMethod
		seq    int64
		want   string
	}{
		{enums.PaymentMethodCOD, 42, "AXC-00042"},
		{enums.PaymentMethodWallet, 7, "AXW-00007"},
		{enums.PaymentMethodQRPay, 123456, "AXQ-123456"},
	}
	for _, tc := range cases {
		if got := FormatDisplayID(tc.method, tc.seq); got != tc.want {
			t.Fatalf("FormatDisplayID(%s, %d) = %q, want %q", tc.method, tc.seq, got, tc.want)
		}
	}
}
