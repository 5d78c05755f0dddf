package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/types"
)

type orderResponse struct {
	OrderID            uuid.UUID           `json:"order_id"`
	DisplayOrderID     string              `json:"display_order_id"`
	Status             string              `json:"status"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentStatus      string              `json:"payment_status"`
	PaymentProvider    *string             `json:"payment_provider,omitempty"`
	PaymentProviderRef *string             `json:"payment_provider_ref,omitempty"`
	CouponCode         *string             `json:"coupon_code,omitempty"`
	SubtotalMinor      int64               `json:"subtotal_minor"`
	DiscountMinor      int64               `json:"discount_minor"`
	ShippingMinor      int64               `json:"shipping_minor"`
	CODFeeMinor        int64               `json:"cod_fee_minor"`
	TotalMinor         int64               `json:"total_minor"`
	Currency           string              `json:"currency"`
	ShippingAddress    types.Address       `json:"shipping_address"`
	ShippingCarrier    *string             `json:"shipping_carrier,omitempty"`
	TrackingID         *string             `json:"tracking_id,omitempty"`
	Items              []itemResponse      `json:"items,omitempty"`
	StatusLogs         []statusLogResponse `json:"status_logs,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

type itemResponse struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	UnitPriceMinor int64      `json:"unit_price_minor"`
	Qty            int        `json:"qty"`
	IsFree         bool       `json:"is_free,omitempty"`
}

type statusLogResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]itemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemResponse{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceMinor: item.UnitPriceMinor,
			Qty:            item.Qty,
			IsFree:         item.IsFree,
		})
	}
	logs := make([]statusLogResponse, 0, len(order.StatusLogs))
	for _, log := range order.StatusLogs {
		logs = append(logs, statusLogResponse{
			FromStatus: string(log.FromStatus),
			ToStatus:   string(log.ToStatus),
			ChangedBy:  log.ChangedBy,
			ChangedAt:  log.CreatedAt,
		})
	}
	return orderResponse{
		OrderID:            order.ID,
		DisplayOrderID:     order.DisplayOrderID,
		Status:             string(order.Status),
		PaymentMethod:      string(order.PaymentMethod),
		PaymentStatus:      string(order.PaymentStatus),
		PaymentProvider:    order.PaymentProvider,
		PaymentProviderRef: order.PaymentProviderRef,
		CouponCode:         order.CouponCode,
		SubtotalMinor:      order.SubtotalMinor,
		DiscountMinor:      order.DiscountMinor,
		ShippingMinor:      order.ShippingMinor,
		CODFeeMinor:        order.CODFeeMinor,
		TotalMinor:         order.TotalMinor,
		Currency:           string(order.Currency),
		ShippingAddress:    order.ShippingAddress,
		ShippingCarrier:    order.ShippingCarrier,
		TrackingID:         order.TrackingID,
		Items:              items,
		StatusLogs:         logs,
		CompletedAt:        order.CompletedAt,
		CancelledAt:        order.CancelledAt,
		CreatedAt:          order.CreatedAt,
	}
}
