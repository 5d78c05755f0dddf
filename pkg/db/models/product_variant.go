package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant carries its own stock; variant stock always takes
// precedence over the parent product's.
type ProductVariant struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Name       string         `gorm:"column:name;not null"`
	SKU        string         `gorm:"column:sku;not null;uniqueIndex"`
	PriceMinor int64          `gorm:"column:price_minor;not null"`
	MRPMinor   int64          `gorm:"column:mrp_minor;not null;default:0"`
	Stock      int            `gorm:"column:stock;not null;default:0"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
