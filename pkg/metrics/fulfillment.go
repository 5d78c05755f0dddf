package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records counters for the order pipeline.
type FulfillmentMetrics struct {
	ordersCreated        *prometheus.CounterVec
	checkoutDuration     *prometheus.HistogramVec
	reservationConflicts prometheus.Counter
	couponRejections     *prometheus.CounterVec
	paymentVerifications *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	ledgerEntries        *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the pipeline metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by payment method.",
	}, []string{"method"})
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order creation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reservationConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_reservation_conflicts_total",
		Help: "Order attempts rejected because stock ran out.",
	})
	couponRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_rejections_total",
		Help: "Coupon redemptions rejected, labeled by reason.",
	}, []string{"reason"})
	paymentVerifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment provider lookups, labeled by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carrier_webhook_events_total",
		Help: "Carrier webhook deliveries, labeled by event type.",
	}, []string{"event"})
	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_total",
		Help: "Financial ledger entries appended, labeled by entry type.",
	}, []string{"type"})
	reg.MustRegister(
		ordersCreated,
		checkoutDuration,
		reservationConflicts,
		couponRejections,
		paymentVerifications,
		webhookEvents,
		ledgerEntries,
	)
	return &FulfillmentMetrics{
		ordersCreated:        ordersCreated,
		checkoutDuration:     checkoutDuration,
		reservationConflicts: reservationConflicts,
		couponRejections:     couponRejections,
		paymentVerifications: paymentVerifications,
		webhookEvents:        webhookEvents,
		ledgerEntries:        ledgerEntries,
	}
}

// IncOrderCreated increments the created-orders counter for a payment method.
func (m *FulfillmentMetrics) IncOrderCreated(method string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(method)).Inc()
}

// ObserveCheckout records a checkout transaction duration.
func (m *FulfillmentMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncReservationConflict counts an out-of-stock rejection.
func (m *FulfillmentMetrics) IncReservationConflict() {
	if m == nil || m.reservationConflicts == nil {
		return
	}
	m.reservationConflicts.Inc()
}

// IncCouponRejection counts a coupon rejection for a reason.
func (m *FulfillmentMetrics) IncCouponRejection(reason string) {
	if m == nil || m.couponRejections == nil {
		return
	}
	m.couponRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncPaymentVerification counts a provider lookup outcome.
func (m *FulfillmentMetrics) IncPaymentVerification(outcome string) {
	if m == nil || m.paymentVerifications == nil {
		return
	}
	m.paymentVerifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhookEvent counts a carrier webhook delivery by event type.
func (m *FulfillmentMetrics) IncWebhookEvent(event string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncLedgerEntry counts an appended ledger entry by type.
func (m *FulfillmentMetrics) IncLedgerEntry(entryType string) {
	if m == nil || m.ledgerEntries == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(normalizeLabel(entryType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
