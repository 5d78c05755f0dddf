package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/types"
)

// Customer is the shopper identity orders are attributed to. The default
// address is refreshed as a side effect of order placement.
type Customer struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Phone          string        `gorm:"column:phone;not null;uniqueIndex"`
	Name           string        `gorm:"column:name;not null"`
	Email          *string       `gorm:"column:email"`
	DefaultAddress types.Address `gorm:"column:default_address;type:jsonb;serializer:json"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
