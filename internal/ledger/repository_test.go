package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/axcshop/axcshop-backend/pkg/db/models"
	"github.com/axcshop/axcshop-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  consignment_id TEXT NOT NULL,
  display_order_id TEXT NOT NULL,
  entry_type TEXT NOT NULL,
  delivery_fee_minor INTEGER NOT NULL,
  collected_minor INTEGER NOT NULL DEFAULT 0,
  net_payout_minor INTEGER NOT NULL,
  reason TEXT,
  created_at DATETIME
);`).Error)
	return conn
}

func deliveryEntry(consignment string, collected, fee int64) *models.LedgerEntry {
	return &models.LedgerEntry{
		ConsignmentID:    consignment,
		DisplayOrderID:   "AXC-00001",
		EntryType:        enums.LedgerEntryDelivery,
		DeliveryFeeMinor: fee,
		CollectedMinor:   collected,
		NetPayoutMinor:   collected - fee,
	}
}

func TestCreateAndListByConsignment(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, deliveryEntry("CN-1", 2350, 120)))
	require.NoError(t, repo.Create(ctx, deliveryEntry("CN-2", 1000, 120)))

	rows, err := repo.List(ctx, ListFilter{ConsignmentID: "CN-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(2230), rows[0].NetPayoutMinor)
}

func TestCreateRejectsUnknownEntryType(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	entry := deliveryEntry("CN-1", 2350, 120)
	entry.EntryType = enums.LedgerEntryType("adjustment")
	require.Error(t, repo.Create(context.Background(), entry))
}

func TestListPaginates(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := deliveryEntry(fmt.Sprintf("CN-%d", i), 1000, 100)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, entry))
	}

	svc, err := NewService(repo)
	require.NoError(t, err)

	first, err := svc.List(ctx, ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, "CN-4", first.Entries[0].ConsignmentID)

	second, err := svc.List(ctx, ListInput{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 2)
	require.True(t, second.Entries[0].CreatedAt.Before(first.Entries[1].CreatedAt))
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, err := NewService(NewRepository(newTestDB(t)))
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListInput{Cursor: "%%%"})
	require.Error(t, err)
}
