package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	page, limit := repository.NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, repository.DefaultPageSize, limit)

	_, limit = repository.NormalizePage(3, 500)
	assert.Equal(t, repository.MaxPageSize, limit)
}

func TestBuildOrderClause(t *testing.T) {
	fields := map[string]string{"name": "name", "createdAt": "created_at"}

	assert.Equal(t, "name ASC", repository.BuildOrderClause(repository.SortConfig{Field: "name", Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, "created_at DESC", repository.BuildOrderClause(repository.SortConfig{Field: "password; DROP TABLE users", Order: "asc"}, fields, "created_at"))
	assert.Equal(t, "created_at DESC", repository.BuildOrderClause(repository.SortConfig{Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, "created_at ASC", repository.BuildOrderClause(repository.SortConfig{Field: "createdAt", Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, repository.SortOrderDesc, repository.ParseSortOrder("sideways"))
}

// TestProductRepository_List tests pagination, search and filters
func TestProductRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProductRepository(db)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		testutil.CreateProduct(t, db, fmt.Sprintf("BRD-%02d", i), "3.00", 0)
	}
	seeded := testutil.CreateProduct(t, db, "SEED-1", "5.00", 0)
	require.NoError(t, db.Model(seeded).Updates(map[string]interface{}{
		"name":      "Seeded Rye",
		"is_active": false,
	}).Error)

	t.Run("first page uses default size", func(t *testing.T) {
		products, total, err := repo.List(ctx, nil, repository.ListOptions{Page: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(13), total)
		assert.Len(t, products, repository.DefaultPageSize)
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		products, total, err := repo.List(ctx, nil, repository.ListOptions{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(13), total)
		assert.Len(t, products, 3)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		products, total, err := repo.List(ctx, nil, repository.ListOptions{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(13), total)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		products, total, err := repo.List(ctx, nil, repository.ListOptions{Search: "seeded RYE"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, seeded.ID, products[0].ID)
	})

	t.Run("sort by sku ascending", func(t *testing.T) {
		products, _, err := repo.List(ctx, nil, repository.ListOptions{
			Limit: 2,
			Sort:  repository.SortConfig{Field: "sku", Order: repository.SortOrderAsc},
		})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "BRD-01", products[0].SKU)
		assert.Equal(t, "BRD-02", products[1].SKU)
	})

	t.Run("active filter", func(t *testing.T) {
		inactive := false
		_, total, err := repo.List(ctx, &repository.ProductFilters{IsActive: &inactive}, repository.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("date range excludes old rows", func(t *testing.T) {
		_, total, err := repo.List(ctx, nil, repository.ListOptions{
			DateRange: domain.DateRangeToday,
			Now:       time.Now().AddDate(0, 0, -3),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

// TestInventoryRepository_ApplyMovementGuard tests that a decrement never dips into reserved stock
func TestInventoryRepository_ApplyMovementGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewInventoryRepository(db)
	ctx := context.Background()
	product := testutil.CreateProduct(t, db, "OAT-1", "2.00", 0)
	warehouse := testutil.CreateWarehouse(t, db, "MAIN")
	inv := testutil.CreateInventory(t, db, product.ID, warehouse.ID, 10, 6)

	_, err := repo.ApplyMovement(ctx, inv, domain.MovementOut, -5, repository.MovementInfo{})
	var shortage *repository.ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 4.0, shortage.Available)

	movement, err := repo.ApplyMovement(ctx, inv, domain.MovementOut, -4, repository.MovementInfo{Reference: "WASTE-1"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, movement.QuantityBefore)
	assert.Equal(t, 6.0, movement.QuantityAfter)

	assert.ErrorIs(t, repo.Release(ctx, inv, 7), repository.ErrReleaseExceedsReserved)

	movements, total, err := repo.ListMovements(ctx, &repository.MovementFilters{InventoryID: &inv.ID}, repository.ListOptions{Search: "waste"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "WASTE-1", movements[0].Reference)
}

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, "ORD", 2025)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.GetNextNumber(ctx, "ORD", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "sequences restart each year")

	current, err := repo.GetCurrentSequence(ctx, "ORD", 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}
