package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/internal/coupons"
	"github.com/axcshop/axcshop-backend/internal/customers"
	"github.com/axcshop/axcshop-backend/internal/inventory"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/internal/sequence"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/metrics"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
	"github.com/axcshop/axcshop-backend/pkg/outbox/payloads"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

// Input is everything checkout needs to place an order. Amounts are never
// part of the input; they are recomputed from catalog prices every time.
type Input struct {
	PaymentMethod   enums.PaymentMethod
	Items           []ItemInput
	CouponCode      string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   *string
	ShippingAddress types.Address
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service creates orders. Counter bump, coupon redemption, stock reservation
// and persistence share one transaction; a failure at any step leaves no
// partial side effects.
type Service interface {
	Execute(ctx context.Context, input Input) (*models.Order, error)
}

type service struct {
	tx        txRunner
	catalog   CatalogReader
	allocator sequence.Allocator
	guard     coupons.Guard
	engine    inventory.Engine
	orders    orders.Repository
	customers customers.Repository
	outbox    outboxPublisher
	pricing   config.PricingConfig
	metrics   *metrics.FulfillmentMetrics
	logg      *logger.Logger
}

type Deps struct {
	Tx        txRunner
	Catalog   CatalogReader
	Allocator sequence.Allocator
	Guard     coupons.Guard
	Engine    inventory.Engine
	Orders    orders.Repository
	Customers customers.Repository
	Outbox    outboxPublisher
	Pricing   config.PricingConfig
	Metrics   *metrics.FulfillmentMetrics
	Logger    *logger.Logger
}

func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if deps.Allocator == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("coupon guard required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("reservation engine required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:        deps.Tx,
		catalog:   deps.Catalog,
		allocator: deps.Allocator,
		guard:     deps.Guard,
		engine:    deps.Engine,
		orders:    deps.Orders,
		customers: deps.Customers,
		outbox:    deps.Outbox,
		pricing:   deps.Pricing,
		metrics:   deps.Metrics,
		logg:      deps.Logger,
	}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*models.Order, error) {
	started := time.Now()
	order, err := s.execute(ctx, input)
	if err != nil {
		s.metrics.ObserveCheckout("failure", time.Since(started))
		return nil, err
	}
	s.metrics.ObserveCheckout("success", time.Since(started))
	s.metrics.IncOrderCreated(string(order.PaymentMethod))
	return order, nil
}

func (s *service) execute(ctx context.Context, input Input) (*models.Order, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if input.CustomerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.WithTx(tx).Upsert(ctx, customers.UpsertInput{
			Phone:   input.CustomerPhone,
			Name:    input.CustomerName,
			Email:   input.CustomerEmail,
			Address: input.ShippingAddress,
		})
		if err != nil {
			return err
		}

		items, err := s.catalog.WithTx(tx).Price(ctx, input.Items)
		if err != nil {
			return err
		}

		var discount int64
		var couponCode *string
		if input.CouponCode != "" {
			coupon, err := s.guard.WithTx(tx).Redeem(ctx, input.CouponCode, customer.ID)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil {
					s.metrics.IncCouponRejection(string(typed.Code()))
				}
				return err
			}
			discount = coupon.DiscountMinor
			couponCode = &coupon.Code
		}

		if err := s.engine.WithTx(tx).Reserve(ctx, reservationRequests(items)); err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
				s.metrics.IncReservationConflict()
			}
			return err
		}

		seq, err := s.allocator.WithTx(tx).Next(ctx, models.CounterOrderNumber)
		if err != nil {
			return err
		}

		amounts := orders.ComputeAmounts(items, discount, input.PaymentMethod, s.pricing)
		order = &models.Order{
			ID:              uuid.New(),
			DisplayOrderID:  orders.FormatDisplayID(input.PaymentMethod, seq),
			SequenceNo:      seq,
			CustomerID:      customer.ID,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			Status:          enums.InitialOrderStatus(input.PaymentMethod),
			CouponCode:      couponCode,
			SubtotalMinor:   amounts.SubtotalMinor,
			DiscountMinor:   amounts.DiscountMinor,
			ShippingMinor:   amounts.ShippingMinor,
			CODFeeMinor:     amounts.CODFeeMinor,
			TotalMinor:      amounts.TotalMinor,
			Currency:        enums.Currency(s.pricing.Currency),
			ShippingAddress: input.ShippingAddress,
			Items:           items,
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{CustomerID: customer.ID.String(), Source: "checkout"},
			Version:       1,
			OccurredAt:    time.Now().UTC(),
			Data: payloads.OrderCreatedEvent{
				OrderID:        order.ID,
				DisplayOrderID: order.DisplayOrderID,
				CustomerID:     customer.ID,
				PaymentMethod:  order.PaymentMethod,
				Status:         order.Status,
				TotalMinor:     order.TotalMinor,
				Currency:       order.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.DisplayOrderID), "order created")
	}
	return order, nil
}

func reservationRequests(items []models.OrderItem) []inventory.ReservationRequest {
	requests := make([]inventory.ReservationRequest, 0, len(items))
	for _, item := range items {
		if item.IsFree {
			continue
		}
		requests = append(requests, inventory.ReservationRequest{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			SKU:       item.SKU,
			Qty:       item.Qty,
		})
	}
	return requests
}
