package carrier

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/internal/ledger"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/pkg/db"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
)

var carrierDDL = []string{
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
	`CREATE TABLE IF NOT EXISTS shipping_records (
  consignment_id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  display_order_id TEXT NOT NULL,
  tracking_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'booked',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  consignment_id TEXT NOT NULL,
  display_order_id TEXT NOT NULL,
  entry_type TEXT NOT NULL,
  delivery_fee_minor INTEGER NOT NULL,
  collected_minor INTEGER NOT NULL DEFAULT 0,
  net_payout_minor INTEGER NOT NULL,
  reason TEXT,
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

type processorStack struct {
	processor *Processor
	conn      *gorm.DB
	order     *models.Order
}

func newProcessorStack(t *testing.T, method enums.PaymentMethod) *processorStack {
	t.Helper()
	dsn := "file:carrier_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	for _, ddl := range carrierDDL {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	repo := orders.NewRepository(conn)
	order := &models.Order{
		ID:             uuid.New(),
		DisplayOrderID: "AXC-00042",
		SequenceNo:     42,
		CustomerID:     uuid.New(),
		PaymentMethod:  method,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		Status:         enums.OrderStatusReadyToShip,
		SubtotalMinor:  2200,
		ShippingMinor:  100,
		CODFeeMinor:    50,
		TotalMinor:     2350,
		Currency:       enums.CurrencyBDT,
	}
	require.NoError(t, repo.Create(context.Background(), order))

	processor, err := NewProcessor(ProcessorDeps{
		Tx:          db.NewWithConn(conn),
		Orders:      repo,
		Shipping:    NewShippingRepository(conn),
		Ledger:      ledger.NewRepository(conn),
		Outbox:      outbox.NewService(outbox.NewRepository(conn), nil),
		CarrierName: "swiftex",
	})
	require.NoError(t, err)

	return &processorStack{processor: processor, conn: conn, order: order}
}

func (s *processorStack) reload(t *testing.T) *models.Order {
	t.Helper()
	order, err := orders.NewRepository(s.conn).FindByID(context.Background(), s.order.ID)
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

func (s *processorStack) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.conn.Raw("SELECT COUNT(*) FROM "+table).Scan(&n).Error)
	return n
}

func TestProcessHandshakeAcksWithoutMutation(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)

	result, err := stack.processor.Process(context.Background(), WebhookPayload{Event: "webhook_handshake"})
	require.NoError(t, err)
	require.Equal(t, enums.CarrierEventHandshake, result.Event)
	require.False(t, result.Mutated)
}

func TestProcessUnknownEventAcks(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)

	result, err := stack.processor.Process(context.Background(), WebhookPayload{Event: "parcel_teleported"})
	require.NoError(t, err)
	require.Equal(t, enums.CarrierEventUnknown, result.Event)
	require.False(t, result.Mutated)
}

func TestProcessConsignmentCreatedUpsertsAndAttachesTracking(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)
	ctx := context.Background()
	payload := WebhookPayload{
		Event:           "consignment_created",
		ConsignmentID:   "CN-1",
		MerchantOrderID: "AXC-00042",
		TrackingID:      "TRK-1",
	}

	result, err := stack.processor.Process(ctx, payload)
	require.NoError(t, err)
	require.True(t, result.Mutated)

	order := stack.reload(t)
	require.NotNil(t, order.TrackingID)
	require.Equal(t, "TRK-1", *order.TrackingID)

	// Duplicate booking collapses into the same record and keeps the
	// original tracking id on the order.
	payload.TrackingID = "TRK-2"
	_, err = stack.processor.Process(ctx, payload)
	require.NoError(t, err)
	require.EqualValues(t, 1, stack.count(t, "shipping_records"))
	order = stack.reload(t)
	require.Equal(t, "TRK-1", *order.TrackingID)
}

func TestProcessDeliveredCODOrder(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)
	ctx := context.Background()
	payload := WebhookPayload{
		Event:            "delivered",
		ConsignmentID:    "CN-1",
		MerchantOrderID:  "AXC-00042",
		DeliveryFeeMinor: 120,
		CollectedMinor:   2350,
	}

	result, err := stack.processor.Process(ctx, payload)
	require.NoError(t, err)
	require.True(t, result.Mutated)

	order := stack.reload(t)
	require.Equal(t, enums.OrderStatusCompleted, order.Status)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.CompletedAt)

	var entry models.LedgerEntry
	require.NoError(t, stack.conn.First(&entry).Error)
	require.Equal(t, enums.LedgerEntryDelivery, entry.EntryType)
	require.Equal(t, int64(2230), entry.NetPayoutMinor)

	// Replay: no second ledger entry, payment stays paid.
	replay, err := stack.processor.Process(ctx, payload)
	require.NoError(t, err)
	require.False(t, replay.Mutated)
	require.EqualValues(t, 1, stack.count(t, "ledger_entries"))
}

func TestProcessDeliveredWalletOrderDoesNotTouchPayment(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodWallet)

	_, err := stack.processor.Process(context.Background(), WebhookPayload{
		Event:            "delivered",
		ConsignmentID:    "CN-1",
		MerchantOrderID:  "AXC-00042",
		DeliveryFeeMinor: 120,
		CollectedMinor:   0,
	})
	require.NoError(t, err)

	order := stack.reload(t)
	require.Equal(t, enums.OrderStatusCompleted, order.Status)
	require.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
}

func TestProcessReturnedChargesFee(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)

	result, err := stack.processor.Process(context.Background(), WebhookPayload{
		Event:            "returned",
		ConsignmentID:    "CN-1",
		MerchantOrderID:  "AXC-00042",
		DeliveryFeeMinor: 120,
		Reason:           "customer unreachable",
	})
	require.NoError(t, err)
	require.True(t, result.Mutated)

	order := stack.reload(t)
	require.Equal(t, enums.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)
	require.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)

	var entry models.LedgerEntry
	require.NoError(t, stack.conn.First(&entry).Error)
	require.Equal(t, enums.LedgerEntryReturn, entry.EntryType)
	require.Equal(t, int64(-120), entry.NetPayoutMinor)
	require.NotNil(t, entry.Reason)
}

func TestProcessDeliveryFailedCancelsWithoutLedger(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)

	result, err := stack.processor.Process(context.Background(), WebhookPayload{
		Event:           "delivery_failed",
		ConsignmentID:   "CN-1",
		MerchantOrderID: "AXC-00042",
	})
	require.NoError(t, err)
	require.True(t, result.Mutated)

	order := stack.reload(t)
	require.Equal(t, enums.OrderStatusCancelled, order.Status)
	require.EqualValues(t, 0, stack.count(t, "ledger_entries"))
}

func TestProcessUnknownOrderReference(t *testing.T) {
	stack := newProcessorStack(t, enums.PaymentMethodCOD)

	_, err := stack.processor.Process(context.Background(), WebhookPayload{
		Event:           "delivered",
		ConsignmentID:   "CN-1",
		MerchantOrderID: "AXC-99999",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
