package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/internal/coupons"
	"github.com/axcshop/axcshop-backend/internal/customers"
	"github.com/axcshop/axcshop-backend/internal/inventory"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/internal/sequence"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

var checkoutDDL = []string{
	`CREATE TABLE IF NOT EXISTS counters (
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  price_minor INTEGER NOT NULL,
  mrp_minor INTEGER NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  has_variants NUMERIC NOT NULL DEFAULT FALSE,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  price_minor INTEGER NOT NULL,
  mrp_minor INTEGER NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  active NUMERIC NOT NULL DEFAULT TRUE,
  discount_minor INTEGER NOT NULL DEFAULT 0,
  total_limit INTEGER NOT NULL DEFAULT 0,
  per_user_limit INTEGER NOT NULL DEFAULT 0,
  redemptions_total INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  phone TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT,
  default_address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS orders (
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
);`,
	`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  unit_price_minor INTEGER NOT NULL,
  unit_mrp_minor INTEGER NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL,
  is_free NUMERIC NOT NULL DEFAULT FALSE
);`,
	`CREATE TABLE IF NOT EXISTS order_status_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

type testStack struct {
	svc       Service
	conn      *gorm.DB
	productID uuid.UUID
	variantID uuid.UUID
	varProdID uuid.UUID
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	for _, ddl := range checkoutDDL {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	productID := uuid.New()
	varProdID := uuid.New()
	variantID := uuid.New()
	require.NoError(t, conn.Exec(
		`INSERT INTO products (id, title, sku, price_minor, stock, has_variants) VALUES (?, 'Notebook', 'NB-01', 500, 5, FALSE)`,
		productID.String()).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO products (id, title, sku, price_minor, stock, has_variants) VALUES (?, 'Backpack', 'BP-01', 0, 0, TRUE)`,
		varProdID.String()).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO product_variants (id, product_id, name, sku, price_minor, stock) VALUES (?, ?, 'Large', 'BP-01-L', 1200, 3)`,
		variantID.String(), varProdID.String()).Error)

	client := db.NewWithConn(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(Deps{
		Tx:        client,
		Catalog:   NewCatalogReader(conn),
		Allocator: sequence.NewAllocator(conn),
		Guard:     coupons.NewGuard(conn),
		Engine:    inventory.NewEngine(conn),
		Orders:    orders.NewRepository(conn),
		Customers: customers.NewRepository(conn),
		Outbox:    outboxSvc,
		Pricing:   config.PricingConfig{Currency: "BDT", ShippingFeeMinor: 100, CODFeeMinor: 50},
	})
	require.NoError(t, err)

	return &testStack{svc: svc, conn: conn, productID: productID, variantID: variantID, varProdID: varProdID}
}

func (s *testStack) cart() []ItemInput {
	return []ItemInput{
		{ProductID: s.productID, Qty: 2},
		{ProductID: s.varProdID, VariantID: &s.variantID, Qty: 1},
	}
}

func (s *testStack) input(method enums.PaymentMethod) Input {
	return Input{
		PaymentMethod: method,
		Items:         s.cart(),
		CustomerName:  "Asha Rahman",
		CustomerPhone: "+8801700000001",
		ShippingAddress: types.Address{
			Name:  "Asha Rahman",
			Phone: "+8801700000001",
			Line1: "House 12, Road 5",
			City:  "Dhaka",
		},
	}
}

func (s *testStack) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.conn.Raw("SELECT COUNT(*) FROM "+table).Scan(&n).Error)
	return n
}

func (s *testStack) stock(t *testing.T, table string, id uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, s.conn.Raw("SELECT stock FROM "+table+" WHERE id = ?", id.String()).Scan(&n).Error)
	return n
}

func TestExecuteCODOrder(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	order, err := stack.svc.Execute(ctx, stack.input(enums.PaymentMethodCOD))
	require.NoError(t, err)

	require.Equal(t, "AXC-00001", order.DisplayOrderID)
	require.Equal(t, enums.OrderStatusProcessing, order.Status)
	require.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	require.Equal(t, int64(2200), order.SubtotalMinor)
	require.Equal(t, int64(100), order.ShippingMinor)
	require.Equal(t, int64(50), order.CODFeeMinor)
	require.Equal(t, int64(2350), order.TotalMinor)
	require.Len(t, order.Items, 2)

	require.Equal(t, 3, stack.stock(t, "products", stack.productID))
	require.Equal(t, 2, stack.stock(t, "product_variants", stack.variantID))
	require.EqualValues(t, 1, stack.count(t, "customers"))
	require.EqualValues(t, 1, stack.count(t, "outbox_events"))

	var eventType string
	require.NoError(t, stack.conn.Raw("SELECT event_type FROM outbox_events").Scan(&eventType).Error)
	require.Equal(t, string(enums.EventOrderCreated), eventType)
}

func TestExecuteWalletOrderSkipsCODFees(t *testing.T) {
	stack := newTestStack(t)

	order, err := stack.svc.Execute(context.Background(), stack.input(enums.PaymentMethodWallet))
	require.NoError(t, err)

	require.Equal(t, "AXW-00001", order.DisplayOrderID)
	require.Equal(t, enums.OrderStatusPendingPayment, order.Status)
	require.Zero(t, order.ShippingMinor)
	require.Zero(t, order.CODFeeMinor)
	require.Equal(t, int64(2200), order.TotalMinor)
}

func TestExecuteAppliesCoupon(t *testing.T) {
	stack := newTestStack(t)
	require.NoError(t, stack.conn.Exec(
		`INSERT INTO coupons (id, code, active, discount_minor) VALUES (?, 'SAVE200', TRUE, 200)`,
		uuid.NewString()).Error)

	input := stack.input(enums.PaymentMethodCOD)
	input.CouponCode = "SAVE200"
	order, err := stack.svc.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, int64(200), order.DiscountMinor)
	require.Equal(t, int64(2150), order.TotalMinor)
	require.NotNil(t, order.CouponCode)

	var redemptions int
	require.NoError(t, stack.conn.Raw("SELECT redemptions_total FROM coupons WHERE code = 'SAVE200'").Scan(&redemptions).Error)
	require.Equal(t, 1, redemptions)
}

func TestExecuteInsufficientStockRollsBackEverything(t *testing.T) {
	stack := newTestStack(t)
	require.NoError(t, stack.conn.Exec(
		`INSERT INTO coupons (id, code, active, discount_minor) VALUES (?, 'SAVE200', TRUE, 200)`,
		uuid.NewString()).Error)

	input := stack.input(enums.PaymentMethodCOD)
	input.CouponCode = "SAVE200"
	input.Items = []ItemInput{{ProductID: stack.productID, Qty: 99}}

	_, err := stack.svc.Execute(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	require.Equal(t, 5, stack.stock(t, "products", stack.productID))
	require.EqualValues(t, 0, stack.count(t, "orders"))
	require.EqualValues(t, 0, stack.count(t, "customers"))
	require.EqualValues(t, 0, stack.count(t, "outbox_events"))

	var redemptions int
	require.NoError(t, stack.conn.Raw("SELECT redemptions_total FROM coupons WHERE code = 'SAVE200'").Scan(&redemptions).Error)
	require.Equal(t, 0, redemptions, "coupon redemption must roll back with the reservation failure")

	var counters int64
	require.NoError(t, stack.conn.Raw("SELECT COUNT(*) FROM counters WHERE name = ?", models.CounterOrderNumber).Scan(&counters).Error)
	require.Zero(t, counters, "counter bump must roll back too")
}

func TestExecuteLastUnitHasSingleWinner(t *testing.T) {
	stack := newTestStack(t)
	require.NoError(t, stack.conn.Exec(
		`UPDATE product_variants SET stock = 1 WHERE id = ?`, stack.variantID.String()).Error)

	input := stack.input(enums.PaymentMethodCOD)
	input.Items = []ItemInput{{ProductID: stack.varProdID, VariantID: &stack.variantID, Qty: 1}}

	_, err := stack.svc.Execute(context.Background(), input)
	require.NoError(t, err)

	second := input
	second.CustomerPhone = "+8801700000002"
	_, err = stack.svc.Execute(context.Background(), second)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	require.EqualValues(t, 1, stack.count(t, "orders"))
	require.Equal(t, 0, stack.stock(t, "product_variants", stack.variantID))
}

func TestExecuteUnknownProduct(t *testing.T) {
	stack := newTestStack(t)

	input := stack.input(enums.PaymentMethodCOD)
	input.Items = []ItemInput{{ProductID: uuid.New(), Qty: 1}}

	_, err := stack.svc.Execute(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestExecuteValidatesInput(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.svc.Execute(context.Background(), Input{PaymentMethod: "barter"})
	require.Error(t, err)

	input := stack.input(enums.PaymentMethodCOD)
	input.Items = nil
	_, err = stack.svc.Execute(context.Background(), input)
	require.Error(t, err)
}
