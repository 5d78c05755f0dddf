package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/api/responses"
	"github.com/axcshop/axcshop-backend/api/validators"
	checkoutsvc "github.com/axcshop/axcshop-backend/internal/checkout"
	internalorders "github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/pagination"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

// Create submits a storefront cart and returns the created order.
func Create(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		items := make([]checkoutsvc.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkoutsvc.ItemInput{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Qty:       item.Qty,
			})
		}

		order, err := svc.Execute(r.Context(), checkoutsvc.Input{
			PaymentMethod:   method,
			Items:           items,
			CouponCode:      strings.TrimSpace(payload.CouponCode),
			CustomerName:    payload.Customer.Name,
			CustomerPhone:   payload.Customer.Phone,
			CustomerEmail:   payload.Customer.Email,
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// List returns a cursor page of orders, optionally filtered by status or
// customer id.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.ListInput{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
			customerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
				return
			}
			input.CustomerID = customerID
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(page.Orders))
		for i := range page.Orders {
			items = append(items, newOrderResponse(&page.Orders[i]))
		}
		responses.WriteSuccess(w, listResponse{Orders: items, NextCursor: page.NextCursor})
	}
}

// Detail returns one order by uuid, falling back to the display order id so
// support staff can paste either form.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		var err error
		var order *models.Order
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			order, err = svc.Get(r.Context(), id)
		} else {
			order, err = svc.GetByDisplayID(r.Context(), raw)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type createOrderRequest struct {
	PaymentMethod   string             `json:"payment_method" validate:"required"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode      string             `json:"coupon_code,omitempty"`
	Customer        customerRequest    `json:"customer" validate:"required"`
	ShippingAddress types.Address      `json:"shipping_address" validate:"required"`
}

type orderItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Qty       int        `json:"qty" validate:"required,gt=0"`
}

type customerRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone" validate:"required"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type listResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
