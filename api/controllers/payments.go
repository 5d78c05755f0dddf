package controllers

import (
	"net/http"
	"strings"

	"github.com/axcshop/axcshop-backend/api/responses"
	"github.com/axcshop/axcshop-backend/api/validators"
	"github.com/axcshop/axcshop-backend/internal/payments"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
)

type verifyPaymentRequest struct {
	ProviderRef    string `json:"provider_ref" validate:"required"`
	DisplayOrderID string `json:"display_order_id,omitempty"`
}

type verifyPaymentResponse struct {
	Verified       bool   `json:"verified"`
	ProviderStatus string `json:"provider_status"`
	OrderID        string `json:"order_id"`
	DisplayOrderID string `json:"display_order_id"`
	OrderStatus    string `json:"order_status"`
	PaymentStatus  string `json:"payment_status"`
}

// VerifyPayment reconciles one wallet payment against its order. Safe to
// call repeatedly for the same reference.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), payments.VerifyInput{
			ProviderRef:    strings.TrimSpace(payload.ProviderRef),
			DisplayOrderID: strings.TrimSpace(payload.DisplayOrderID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := verifyPaymentResponse{
			Verified:       result.Verified,
			ProviderStatus: result.ProviderStatus,
		}
		if result.Order != nil {
			resp.OrderID = result.Order.ID.String()
			resp.DisplayOrderID = result.Order.DisplayOrderID
			resp.OrderStatus = string(result.Order.Status)
			resp.PaymentStatus = string(result.Order.PaymentStatus)
		}
		responses.WriteSuccess(w, resp)
	}
}
