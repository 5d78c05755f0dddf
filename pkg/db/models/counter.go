package models

import "time"

// Counter is a named monotonic sequence. The row is only ever touched via
// an atomic fetch-and-increment; the stored value is the last issued number.
type Counter struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     int64     `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CounterOrderNumber is the single global order-number sequence shared by
// every payment method.
const CounterOrderNumber = "order_number"
