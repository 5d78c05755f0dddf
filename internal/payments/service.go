package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/metrics"
	"github.com/axcshop/axcshop-backend/pkg/outbox"
	"github.com/axcshop/axcshop-backend/pkg/outbox/payloads"
)

// VerifyInput locates the order being reconciled. The provider reference is
// the primary key; the display order id is a fallback for orders that have
// not stored the reference yet.
type VerifyInput struct {
	ProviderRef    string
	DisplayOrderID string
}

// VerificationResult is what the verify endpoint returns: the provider's raw
// status, the order snapshot after reconciliation, and whether the order is
// now paid.
type VerificationResult struct {
	ProviderStatus string
	Order          *models.Order
	Verified       bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service reconciles pending payments against the wallet gateway. All
// mutations are guarded so a concurrent verification can never move a paid
// order back to unpaid.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*VerificationResult, error)
}

type service struct {
	tx       txRunner
	orders   orders.Repository
	provider ProviderClient
	outbox   outboxPublisher
	metrics  *metrics.FulfillmentMetrics
	logg     *logger.Logger
}

func NewService(tx txRunner, repo orders.Repository, provider ProviderClient, outboxSvc outboxPublisher, m *metrics.FulfillmentMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, orders: repo, provider: provider, outbox: outboxSvc, metrics: m, logg: logg}, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerificationResult, error) {
	if strings.TrimSpace(input.ProviderRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider reference required")
	}

	order, err := s.findOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for provider reference")
	}

	// Already reconciled: answer from our own record, no provider call.
	if order.PaymentStatus == enums.PaymentStatusPaid {
		s.metrics.IncPaymentVerification("already_paid")
		return &VerificationResult{ProviderStatus: "completed", Order: order, Verified: true}, nil
	}

	lookup, err := s.provider.LookupPayment(ctx, input.ProviderRef)
	if err != nil {
		s.metrics.IncPaymentVerification("provider_error")
		return nil, err
	}

	amountMatches, err := amountMatchesTotal(lookup.Amount, order.TotalMinor)
	if err != nil {
		s.metrics.IncPaymentVerification("provider_error")
		return nil, err
	}

	target, markPaid, err := mapProviderStatus(lookup.Status, amountMatches)
	if err != nil {
		s.metrics.IncPaymentVerification("provider_error")
		return nil, err
	}

	var result *VerificationResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if current.PaymentStatus == enums.PaymentStatusPaid {
			result = &VerificationResult{ProviderStatus: lookup.Status, Order: current, Verified: true}
			return nil
		}

		if markPaid {
			won, err := repo.MarkPaid(ctx, current.ID, providerName, input.ProviderRef)
			if err != nil {
				return err
			}
			if !won {
				reloaded, err := repo.FindByID(ctx, current.ID)
				if err != nil {
					return err
				}
				result = &VerificationResult{ProviderStatus: lookup.Status, Order: reloaded, Verified: true}
				return nil
			}
			current.PaymentStatus = enums.PaymentStatusPaid
			provider := providerName
			ref := input.ProviderRef
			current.PaymentProvider = &provider
			current.PaymentProviderRef = &ref
		} else if current.PaymentProviderRef == nil {
			if err := repo.SetProviderRefIfUnset(ctx, current.ID, providerName, input.ProviderRef); err != nil {
				return err
			}
			ref := input.ProviderRef
			provider := providerName
			current.PaymentProvider = &provider
			current.PaymentProviderRef = &ref
		}

		log, err := orders.ApplyTransition(current, target, "payment-reconciler", time.Now())
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		if log != nil {
			if err := repo.AppendStatusLog(ctx, log); err != nil {
				return err
			}
		}

		if markPaid {
			paidAt := time.Now().UTC()
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   current.ID,
				Actor:         &outbox.ActorRef{Source: "payment-reconciler"},
				Version:       1,
				OccurredAt:    paidAt,
				Data: payloads.OrderPaidEvent{
					OrderID:        current.ID,
					DisplayOrderID: current.DisplayOrderID,
					Provider:       providerName,
					ProviderRef:    input.ProviderRef,
					AmountMinor:    current.TotalMinor,
					PaidAt:         paidAt,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		verified := current.PaymentStatus == enums.PaymentStatusPaid && current.Status == enums.OrderStatusProcessing
		result = &VerificationResult{ProviderStatus: lookup.Status, Order: current, Verified: verified}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Verified {
		s.metrics.IncPaymentVerification("verified")
	} else {
		s.metrics.IncPaymentVerification(strings.ToLower(strings.TrimSpace(lookup.Status)))
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"display_order_id": result.Order.DisplayOrderID,
			"provider_status":  result.ProviderStatus,
			"verified":         result.Verified,
		})
		s.logg.Info(logCtx, "payment verification reconciled")
	}
	return result, nil
}

func (s *service) findOrder(ctx context.Context, input VerifyInput) (*models.Order, error) {
	order, err := s.orders.FindByProviderRef(ctx, input.ProviderRef)
	if err != nil {
		return nil, err
	}
	if order == nil && input.DisplayOrderID != "" {
		return s.orders.FindByDisplayID(ctx, input.DisplayOrderID)
	}
	return order, nil
}

// amountMatchesTotal compares the provider's decimal amount string to the
// order total in integer minor units. Sub-minor precision from the provider
// is treated as a mismatch rather than rounded.
func amountMatchesTotal(amount string, totalMinor int64) (bool, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parsing provider amount")
	}
	minor := parsed.Shift(2)
	if !minor.IsInteger() {
		return false, nil
	}
	return minor.IntPart() == totalMinor, nil
}

// mapProviderStatus is the exhaustive table from provider vocabulary to the
// order's status enumeration.
func mapProviderStatus(status string, amountMatches bool) (enums.OrderStatus, bool, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		if amountMatches {
			return enums.OrderStatusProcessing, true, nil
		}
		return enums.OrderStatusInvalidPayment, false, nil
	case "initiated", "pending":
		return enums.OrderStatusPendingPayment, false, nil
	case "cancelled", "expired", "failed", "refunded":
		return enums.OrderStatusCancelled, false, nil
	default:
		return "", false, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("unexpected provider status %q", status))
	}
}
