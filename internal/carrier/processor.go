package carrier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/internal/ledger"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/metrics"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
	"github.com/axcshop/axcshop-backend/pkg/outbox/payloads"
)

const changedByCarrier = "carrier-webhook"

// WebhookPayload is the carrier's push body after JSON decoding. The
// merchant order reference is our display order id.
type WebhookPayload struct {
	Event            string
	ConsignmentID    string
	MerchantOrderID  string
	TrackingID       string
	DeliveryFeeMinor int64
	CollectedMinor   int64
	Reason           string
}

// Result reports what the processor did with an event. Mutated is false for
// ack-only events.
type Result struct {
	Event   enums.CarrierEvent
	Mutated bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Processor applies carrier delivery-lifecycle events to orders and the
// ledger. Events arrive at least once; every handler is safe to replay.
type Processor struct {
	tx          txRunner
	orders      orders.Repository
	shipping    ShippingRepository
	ledger      ledger.Repository
	outbox      outboxPublisher
	carrierName string
	metrics     *metrics.FulfillmentMetrics
	logg        *logger.Logger
}

type ProcessorDeps struct {
	Tx          txRunner
	Orders      orders.Repository
	Shipping    ShippingRepository
	Ledger      ledger.Repository
	Outbox      outboxPublisher
	CarrierName string
	Metrics     *metrics.FulfillmentMetrics
	Logger      *logger.Logger
}

func NewProcessor(deps ProcessorDeps) (*Processor, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Shipping == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	name := deps.CarrierName
	if name == "" {
		name = "carrier"
	}
	return &Processor{
		tx:          deps.Tx,
		orders:      deps.Orders,
		shipping:    deps.Shipping,
		ledger:      deps.Ledger,
		outbox:      deps.Outbox,
		carrierName: name,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
	}, nil
}

// Process dispatches one webhook event. Ack-only events return immediately;
// mutating events run inside a transaction.
func (p *Processor) Process(ctx context.Context, payload WebhookPayload) (*Result, error) {
	event := enums.ParseCarrierEvent(strings.TrimSpace(payload.Event))
	p.metrics.IncWebhookEvent(string(event))

	switch event {
	case enums.CarrierEventHandshake, enums.CarrierEventConsignmentUpdated, enums.CarrierEventUnknown:
		return &Result{Event: event}, nil
	case enums.CarrierEventConsignmentCreated:
		return p.consignmentCreated(ctx, event, payload)
	case enums.CarrierEventDelivered:
		return p.delivered(ctx, event, payload)
	case enums.CarrierEventReturned:
		return p.returned(ctx, event, payload)
	case enums.CarrierEventDeliveryFailed:
		return p.deliveryFailed(ctx, event, payload)
	default:
		return &Result{Event: enums.CarrierEventUnknown}, nil
	}
}

func (p *Processor) consignmentCreated(ctx context.Context, event enums.CarrierEvent, payload WebhookPayload) (*Result, error) {
	if payload.ConsignmentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "consignment id required")
	}
	order, err := p.findOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	err = p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record := &models.ShippingRecord{
			ConsignmentID:  payload.ConsignmentID,
			OrderID:        order.ID,
			DisplayOrderID: order.DisplayOrderID,
			TrackingID:     payload.TrackingID,
			Status:         "booked",
		}
		if err := p.shipping.WithTx(tx).Upsert(ctx, record); err != nil {
			return err
		}
		if err := p.orders.WithTx(tx).SetTrackingIfUnset(ctx, order.ID, p.carrierName, payload.TrackingID); err != nil {
			return err
		}
		return p.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentBooked,
			AggregateType: enums.AggregateShipment,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{Source: changedByCarrier},
			Version:       1,
			OccurredAt:    time.Now().UTC(),
			Data: payloads.ShipmentBookedEvent{
				ConsignmentID:  payload.ConsignmentID,
				OrderID:        order.ID,
				DisplayOrderID: order.DisplayOrderID,
				TrackingID:     payload.TrackingID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	p.logBooked(ctx, payload)
	return &Result{Event: event, Mutated: true}, nil
}

func (p *Processor) delivered(ctx context.Context, event enums.CarrierEvent, payload WebhookPayload) (*Result, error) {
	order, err := p.findOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	var mutated bool
	err = p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := p.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}

		log, err := orders.ApplyTransition(current, enums.OrderStatusCompleted, changedByCarrier, time.Now())
		if err != nil {
			return err
		}
		if log == nil {
			// Replayed delivery: order already completed, nothing to do.
			return nil
		}
		mutated = true

		if current.PaymentMethod == enums.PaymentMethodCOD {
			if _, err := repo.MarkPaid(ctx, current.ID, "cod", payload.ConsignmentID); err != nil {
				return err
			}
			current.PaymentStatus = enums.PaymentStatusPaid
		}
		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		if err := repo.AppendStatusLog(ctx, log); err != nil {
			return err
		}
		if payload.ConsignmentID != "" {
			if err := p.shipping.WithTx(tx).UpdateStatus(ctx, payload.ConsignmentID, string(event)); err != nil {
				return err
			}
		}

		entry := &models.LedgerEntry{
			ConsignmentID:    payload.ConsignmentID,
			DisplayOrderID:   current.DisplayOrderID,
			EntryType:        enums.LedgerEntryDelivery,
			DeliveryFeeMinor: payload.DeliveryFeeMinor,
			CollectedMinor:   payload.CollectedMinor,
			NetPayoutMinor:   payload.CollectedMinor - payload.DeliveryFeeMinor,
		}
		return p.appendLedger(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Event: event, Mutated: mutated}, nil
}

func (p *Processor) returned(ctx context.Context, event enums.CarrierEvent, payload WebhookPayload) (*Result, error) {
	order, err := p.findOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	var mutated bool
	err = p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := p.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}

		log, err := orders.ApplyTransition(current, enums.OrderStatusCancelled, changedByCarrier, time.Now())
		if err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		mutated = true

		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		if err := repo.AppendStatusLog(ctx, log); err != nil {
			return err
		}
		if payload.ConsignmentID != "" {
			if err := p.shipping.WithTx(tx).UpdateStatus(ctx, payload.ConsignmentID, string(event)); err != nil {
				return err
			}
		}

		entry := &models.LedgerEntry{
			ConsignmentID:    payload.ConsignmentID,
			DisplayOrderID:   current.DisplayOrderID,
			EntryType:        enums.LedgerEntryReturn,
			DeliveryFeeMinor: payload.DeliveryFeeMinor,
			NetPayoutMinor:   -payload.DeliveryFeeMinor,
		}
		if payload.Reason != "" {
			reason := payload.Reason
			entry.Reason = &reason
		}
		return p.appendLedger(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Event: event, Mutated: mutated}, nil
}

func (p *Processor) deliveryFailed(ctx context.Context, event enums.CarrierEvent, payload WebhookPayload) (*Result, error) {
	order, err := p.findOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	var mutated bool
	err = p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := p.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}

		log, err := orders.ApplyTransition(current, enums.OrderStatusCancelled, changedByCarrier, time.Now())
		if err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		mutated = true

		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		if err := repo.AppendStatusLog(ctx, log); err != nil {
			return err
		}
		if payload.ConsignmentID != "" {
			return p.shipping.WithTx(tx).UpdateStatus(ctx, payload.ConsignmentID, string(event))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Event: event, Mutated: mutated}, nil
}

func (p *Processor) appendLedger(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error {
	if err := p.ledger.WithTx(tx).Create(ctx, entry); err != nil {
		return err
	}
	p.metrics.IncLedgerEntry(string(entry.EntryType))
	return p.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventLedgerEntryAdded,
		AggregateType: enums.AggregateLedgerEntry,
		AggregateID:   entry.ID,
		Actor:         &outbox.ActorRef{Source: changedByCarrier},
		Version:       1,
		OccurredAt:    time.Now().UTC(),
		Data: payloads.LedgerEntryAddedEvent{
			EntryID:          entry.ID,
			ConsignmentID:    entry.ConsignmentID,
			DisplayOrderID:   entry.DisplayOrderID,
			EntryType:        entry.EntryType,
			DeliveryFeeMinor: entry.DeliveryFeeMinor,
			CollectedMinor:   entry.CollectedMinor,
			NetPayoutMinor:   entry.NetPayoutMinor,
		},
	})
}

func (p *Processor) findOrder(ctx context.Context, payload WebhookPayload) (*models.Order, error) {
	if payload.MerchantOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant order reference required")
	}
	order, err := p.orders.FindByDisplayID(ctx, payload.MerchantOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", payload.MerchantOrderID))
	}
	return order, nil
}

func (p *Processor) logBooked(ctx context.Context, payload WebhookPayload) {
	if p.logg == nil {
		return
	}
	logCtx := p.logg.WithConsignmentID(ctx, payload.ConsignmentID)
	logCtx = p.logg.WithOrderID(logCtx, payload.MerchantOrderID)
	p.logg.Info(logCtx, "consignment recorded")
}
