package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/pkg/enums"
)

// LedgerEntry records an immutable financial outcome reported by the
// carrier. Rows are never updated or deleted; the table is the audit trail
// for reconciliation against carrier statements.
type LedgerEntry struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConsignmentID    string                `gorm:"column:consignment_id;not null;index"`
	DisplayOrderID   string                `gorm:"column:display_order_id;not null;index"`
	EntryType        enums.LedgerEntryType `gorm:"column:entry_type;type:text;not null"`
	DeliveryFeeMinor int64                 `gorm:"column:delivery_fee_minor;not null"`
	CollectedMinor   int64                 `gorm:"column:collected_minor;not null;default:0"`
	NetPayoutMinor   int64                 `gorm:"column:net_payout_minor;not null"`
	Reason           *string               `gorm:"column:reason"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
}
