package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a promotional code with a global and a per-customer usage
// budget. A zero limit means unlimited. RedemptionsTotal is only advanced
// through the redemption guard's conditional increment, which keeps it at
// or below TotalLimit whenever the latter is nonzero.
type Coupon struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string    `gorm:"column:code;not null;uniqueIndex"`
	Active           bool      `gorm:"column:active;not null;default:true"`
	DiscountMinor    int64     `gorm:"column:discount_minor;not null;default:0"`
	TotalLimit       int       `gorm:"column:total_limit;not null;default:0"`
	PerUserLimit     int       `gorm:"column:per_user_limit;not null;default:0"`
	RedemptionsTotal int       `gorm:"column:redemptions_total;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
