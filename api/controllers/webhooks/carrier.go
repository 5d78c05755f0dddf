package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/axcshop/axcshop-backend/api/responses"
	"github.com/axcshop/axcshop-backend/internal/carrier"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
)

// CarrierProcessor applies one webhook event to order, shipping and ledger
// state.
type CarrierProcessor interface {
	Process(ctx context.Context, payload carrier.WebhookPayload) (*carrier.Result, error)
}

// SignatureHeader carries the carrier's shared-secret signature on every
// non-handshake push.
const SignatureHeader = "X-Carrier-Signature"

// AckHeader is set on every webhook response; the carrier validates its
// value against the integration contract before accepting the ack.
const AckHeader = "X-Ack-Secret"

type carrierWebhookRequest struct {
	Event            string `json:"event"`
	ConsignmentID    string `json:"consignment_id"`
	MerchantOrderID  string `json:"merchant_order_id"`
	TrackingID       string `json:"tracking_id"`
	DeliveryFeeMinor int64  `json:"delivery_fee_minor"`
	CollectedMinor   int64  `json:"collected_amount_minor"`
	Reason           string `json:"reason"`
}

type carrierAck struct {
	Acknowledged bool   `json:"acknowledged"`
	Event        string `json:"event"`
}

// CarrierWebhook receives delivery lifecycle pushes. Signature failures are
// rejected without mutation; every other outcome acks 200 so the carrier
// does not retry-storm, with processing failures only logged.
func CarrierWebhook(processor CarrierProcessor, auth *carrier.Authenticator, cfg config.CarrierConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if processor == nil || auth == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "carrier webhook unavailable"))
			return
		}

		var payload carrierWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			// Malformed pushes are acked so the carrier drops them instead
			// of retrying forever.
			if logg != nil {
				logg.Error(ctx, "carrier webhook body rejected", err)
			}
			writeAck(w, cfg, "")
			return
		}

		event := enums.ParseCarrierEvent(strings.TrimSpace(payload.Event))
		if err := auth.VerifySignature(event, r.Header.Get(SignatureHeader)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := processor.Process(ctx, carrier.WebhookPayload{
			Event:            payload.Event,
			ConsignmentID:    payload.ConsignmentID,
			MerchantOrderID:  payload.MerchantOrderID,
			TrackingID:       payload.TrackingID,
			DeliveryFeeMinor: payload.DeliveryFeeMinor,
			CollectedMinor:   payload.CollectedMinor,
			Reason:           payload.Reason,
		})
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "carrier webhook processing failed", err)
			}
			writeAck(w, cfg, string(event))
			return
		}

		writeAck(w, cfg, string(result.Event))
	}
}

func writeAck(w http.ResponseWriter, cfg config.CarrierConfig, event string) {
	w.Header().Set(AckHeader, cfg.AckHeaderSecret)
	responses.WriteSuccess(w, carrierAck{Acknowledged: true, Event: event})
}
