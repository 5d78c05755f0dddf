package coupons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:coupons_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	coupons := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  active NUMERIC NOT NULL DEFAULT TRUE,
  discount_minor INTEGER NOT NULL DEFAULT 0,
  total_limit INTEGER NOT NULL DEFAULT 0,
  per_user_limit INTEGER NOT NULL DEFAULT 0,
  redemptions_total INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  display_order_id TEXT NOT NULL UNIQUE,
  sequence_no INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  payment_provider TEXT,
  payment_provider_ref TEXT,
  payment_details TEXT,
  status TEXT NOT NULL,
  coupon_code TEXT,
  subtotal_minor INTEGER NOT NULL,
  discount_minor INTEGER NOT NULL DEFAULT 0,
  shipping_minor INTEGER NOT NULL DEFAULT 0,
  cod_fee_minor INTEGER NOT NULL DEFAULT 0,
  total_minor INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'BDT',
  shipping_address TEXT,
  shipping_carrier TEXT,
  tracking_id TEXT,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(coupons).Error)
	require.NoError(t, conn.Exec(orders).Error)
	return conn
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, active bool, totalLimit, perUserLimit, redeemed int) models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		ID:               uuid.New(),
		Code:             code,
		Active:           active,
		DiscountMinor:    100,
		TotalLimit:       totalLimit,
		PerUserLimit:     perUserLimit,
		RedemptionsTotal: redeemed,
	}
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func seedOrderWithCoupon(t *testing.T, db *gorm.DB, customerID uuid.UUID, code string, status enums.OrderStatus) {
	t.Helper()
	seq := uuid.New().ID()
	order := models.Order{
		ID:             uuid.New(),
		DisplayOrderID: uuid.NewString(),
		SequenceNo:     int64(seq),
		CustomerID:     customerID,
		PaymentMethod:  enums.PaymentMethodCOD,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		Status:         status,
		CouponCode:     &code,
		SubtotalMinor:  1000,
		TotalMinor:     1000,
		Currency:       enums.CurrencyBDT,
	}
	require.NoError(t, db.Create(&order).Error)
}

func TestRedeemHappyPathConsumesBudget(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "WELCOME10", true, 5, 0, 0)

	guard := NewGuard(db)
	coupon, err := guard.Redeem(context.Background(), "WELCOME10", uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(100), coupon.DiscountMinor)
	require.Equal(t, 1, coupon.RedemptionsTotal)

	var got models.Coupon
	require.NoError(t, db.First(&got, "code = ?", "WELCOME10").Error)
	require.Equal(t, 1, got.RedemptionsTotal)
}

func TestRedeemUnknownCoupon(t *testing.T) {
	db := newTestDB(t)
	guard := NewGuard(db)

	_, err := guard.Redeem(context.Background(), "NOPE", uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRedeemInactiveCoupon(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "OLD", false, 0, 0, 0)

	guard := NewGuard(db)
	_, err := guard.Redeem(context.Background(), "OLD", uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRedeemGlobalLimitExhausted(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "SCARCE", true, 2, 0, 2)

	guard := NewGuard(db)
	_, err := guard.Redeem(context.Background(), "SCARCE", uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var got models.Coupon
	require.NoError(t, db.First(&got, "code = ?", "SCARCE").Error)
	require.Equal(t, 2, got.RedemptionsTotal)
}

func TestRedeemZeroLimitMeansUnlimited(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "FOREVER", true, 0, 0, 999)

	guard := NewGuard(db)
	coupon, err := guard.Redeem(context.Background(), "FOREVER", uuid.New())
	require.NoError(t, err)
	require.Equal(t, 1000, coupon.RedemptionsTotal)
}

func TestRedeemPerUserLimit(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "ONCE", true, 0, 1, 0)
	customerID := uuid.New()
	seedOrderWithCoupon(t, db, customerID, "ONCE", enums.OrderStatusProcessing)

	guard := NewGuard(db)
	_, err := guard.Redeem(context.Background(), "ONCE", customerID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	// other customers are unaffected
	_, err = guard.Redeem(context.Background(), "ONCE", uuid.New())
	require.NoError(t, err)
}

func TestRedeemCancelledOrdersDoNotCount(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, "RETRY", true, 0, 1, 0)
	customerID := uuid.New()
	seedOrderWithCoupon(t, db, customerID, "RETRY", enums.OrderStatusCancelled)

	guard := NewGuard(db)
	_, err := guard.Redeem(context.Background(), "RETRY", customerID)
	require.NoError(t, err)
}
