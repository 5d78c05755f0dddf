package models

import (
	"github.com/google/uuid"
)

// OrderItem is one line of an order. Free items keep their price fields for
// display but contribute zero to the subtotal.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	SKU            string     `gorm:"column:sku;not null"`
	UnitPriceMinor int64      `gorm:"column:unit_price_minor;not null"`
	UnitMRPMinor   int64      `gorm:"column:unit_mrp_minor;not null;default:0"`
	Qty            int        `gorm:"column:qty;not null"`
	IsFree         bool       `gorm:"column:is_free;not null;default:false"`
}
