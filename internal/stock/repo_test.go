package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

func intPtr(v int) *int { return &v }

func TestListLowStockOrdersByDeficit(t *testing.T) {
	t.Parallel()

	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	supplierID := uuid.New()

	// deficit 8
	worst := seedProduct(t, conn, supplierID, "Nearly Gone", "SKU-A", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      worst.ID,
		QuantityOnHand: 2,
		ReorderLevel:   intPtr(10),
	}))

	// deficit 1
	mild := seedProduct(t, conn, supplierID, "Running Low", "SKU-B", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      mild.ID,
		QuantityOnHand: 4,
		ReorderLevel:   intPtr(5),
	}))

	// above threshold, excluded
	healthy := seedProduct(t, conn, supplierID, "Well Stocked", "SKU-C", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      healthy.ID,
		QuantityOnHand: 50,
		ReorderLevel:   intPtr(5),
	}))

	// no threshold, excluded
	untracked := seedProduct(t, conn, supplierID, "Untracked", "SKU-D", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      untracked.ID,
		QuantityOnHand: 0,
	}))

	rows, err := repo.ListLowStock(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, worst.ID, rows[0].ProductID)
	assert.Equal(t, 8, rows[0].Deficit)
	assert.Equal(t, mild.ID, rows[1].ProductID)
	assert.Equal(t, 1, rows[1].Deficit)
}

func TestListLowStockIncludesBoundary(t *testing.T) {
	t.Parallel()

	conn := setupStockTestDB(t)
	repo := NewRepository(conn)

	product := seedProduct(t, conn, uuid.New(), "At Threshold", "SKU-A", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      product.ID,
		QuantityOnHand: 5,
		ReorderLevel:   intPtr(5),
	}))

	rows, err := repo.ListLowStock(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Deficit)
}

func TestListLowStockScopesToSupplier(t *testing.T) {
	t.Parallel()

	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	supplierA := uuid.New()
	supplierB := uuid.New()

	mine := seedProduct(t, conn, supplierA, "Mine", "SKU-A", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      mine.ID,
		QuantityOnHand: 1,
		ReorderLevel:   intPtr(10),
	}))

	theirs := seedProduct(t, conn, supplierB, "Theirs", "SKU-B", 100)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      theirs.ID,
		QuantityOnHand: 1,
		ReorderLevel:   intPtr(10),
	}))

	rows, err := repo.ListLowStock(context.Background(), &supplierA)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ProductID)
}

func TestAdjustRefreshesLastUpdated(t *testing.T) {
	t.Parallel()

	conn := setupStockTestDB(t)
	repo := NewRepository(conn)

	product := seedProduct(t, conn, uuid.New(), "Widget", "SKU-A", 100)
	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(context.Background(), &models.StockEntry{
		ProductID:      product.ID,
		QuantityOnHand: 5,
		LastUpdated:    stale,
	}))

	applied, err := repo.Adjust(context.Background(), product.ID, -1)
	require.NoError(t, err)
	require.True(t, applied)

	entry, err := repo.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, entry.QuantityOnHand)
	assert.True(t, entry.LastUpdated.After(stale))
}

func TestAdjustUnknownProductReportsNoMatch(t *testing.T) {
	t.Parallel()

	conn := setupStockTestDB(t)
	repo := NewRepository(conn)

	applied, err := repo.Adjust(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, applied)
}
