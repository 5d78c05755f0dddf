package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a stock-bearing catalog entry. When HasVariants is set the
// product-level stock column is inert; reservations must target a variant.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string           `gorm:"column:title;not null"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex"`
	PriceMinor  int64            `gorm:"column:price_minor;not null"`
	MRPMinor    int64            `gorm:"column:mrp_minor;not null;default:0"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	HasVariants bool             `gorm:"column:has_variants;not null;default:false"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
