package controllers

import (
	"net/http"

	"github.com/axcshop/axcshop-backend/api/middleware"
	"github.com/axcshop/axcshop-backend/api/responses"
	"github.com/axcshop/axcshop-backend/api/validators"
	internalorders "github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
)

type transitionOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

type transitionOrderResponse struct {
	OrderID        string `json:"order_id"`
	DisplayOrderID string `json:"display_order_id"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
}

// AdminTransitionOrder moves an order along the fulfillment state machine on
// behalf of the authenticated back-office admin.
func AdminTransitionOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		toStatus, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		changedBy := middleware.AdminIDFromContext(r.Context())
		if changedBy == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing"))
			return
		}

		order, err := svc.Transition(r.Context(), internalorders.TransitionInput{
			OrderID:   orderID,
			ToStatus:  toStatus,
			ChangedBy: changedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transitionOrderResponse{
			OrderID:        order.ID.String(),
			DisplayOrderID: order.DisplayOrderID,
			Status:         string(order.Status),
			PaymentStatus:  string(order.PaymentStatus),
		})
	}
}
