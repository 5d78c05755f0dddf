package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/axcshop/axcshop-backend/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
		CREATE TABLE customers (
			id TEXT PRIMARY KEY,
			phone TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			default_address TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX ux_customers_phone ON customers (phone)`).Error)
	return conn
}

func testAddress(city string) types.Address {
	return types.Address{
		Name:  "Asha Rahman",
		Phone: "+8801700000001",
		Line1: "House 12, Road 5",
		City:  city,
	}
}

func TestUpsertCreatesThenRefreshes(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.Upsert(ctx, UpsertInput{
		Phone:   "+8801700000001",
		Name:    "Asha Rahman",
		Address: testAddress("Dhaka"),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	email := "asha@example.com"
	second, err := repo.Upsert(ctx, UpsertInput{
		Phone:   "+8801700000001",
		Name:    "Asha R.",
		Email:   &email,
		Address: testAddress("Chattogram"),
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "phone must resolve to the same customer")
	require.Equal(t, "Asha R.", second.Name)
	require.NotNil(t, second.Email)
	require.Equal(t, "Chattogram", second.DefaultAddress.City)
}

func TestUpsertKeepsProfileWhenFieldsOmitted(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	email := "asha@example.com"
	_, err := repo.Upsert(ctx, UpsertInput{
		Phone:   "+8801700000001",
		Name:    "Asha Rahman",
		Email:   &email,
		Address: testAddress("Dhaka"),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, UpsertInput{
		Phone: "+8801700000001",
		Name:  "Asha Rahman",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Email, "omitted email must not clear the stored one")
	require.Equal(t, "Dhaka", updated.DefaultAddress.City, "zero address must not clear the stored one")
}

func TestUpsertRequiresPhone(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.Upsert(context.Background(), UpsertInput{Name: "No Phone"})
	require.Error(t, err)
}

func TestFindByPhoneMissingReturnsNil(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	customer, err := repo.FindByPhone(context.Background(), "+8801999999999")
	require.NoError(t, err)
	require.Nil(t, customer)
}
