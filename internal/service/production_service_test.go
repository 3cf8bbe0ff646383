package service_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/crumbhouse/bakery-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProductionService_Lifecycle tests planning from a recipe and booking output on completion
func TestProductionService_Lifecycle(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.ContextWithRole(domain.RoleProductionManager)
	bakery := testutil.CreateWarehouse(t, s.db, "BAKE")
	flour := testutil.CreateProduct(t, s.db, "FLOUR-1", "1.10", 0)
	loaf := testutil.CreateProduct(t, s.db, "LOAF-1", "4.00", 0)
	recipe := testutil.CreateRecipe(t, s.db, "Country loaf", loaf, 10, map[uuid.UUID]float64{flour.ID: 5})

	production, err := s.production.Create(ctx, &domain.CreateProductionRequest{
		RecipeID:        recipe.ID,
		WarehouseID:     &bakery.ID,
		PlannedQuantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductionPlanned, production.Status)
	assert.Regexp(t, `^PRD-\d{4}-000001$`, production.BatchNumber)
	require.Len(t, production.Items, 1)
	assert.Equal(t, 10.0, production.Items[0].PlannedQuantity)

	_, err = s.production.UpdateStatus(ctx, production.ID, &domain.UpdateProductionStatusRequest{Status: domain.ProductionCompleted})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	started, err := s.production.UpdateStatus(ctx, production.ID, &domain.UpdateProductionStatusRequest{Status: domain.ProductionInProgress})
	require.NoError(t, err)
	assert.NotNil(t, started.StartDate)

	assert.ErrorIs(t, s.production.Delete(ctx, production.ID), service.ErrConflict)

	actual := 18.0
	completed, err := s.production.UpdateStatus(ctx, production.ID, &domain.UpdateProductionStatusRequest{
		Status:         domain.ProductionCompleted,
		ActualQuantity: &actual,
	})
	require.NoError(t, err)
	require.NotNil(t, completed.ActualQuantity)
	assert.Equal(t, 18.0, *completed.ActualQuantity)
	assert.NotNil(t, completed.EndDate)

	var stock domain.Inventory
	require.NoError(t, s.db.Where("product_id = ? AND warehouse_id = ?", loaf.ID, bakery.ID).First(&stock).Error)
	assert.Equal(t, 18.0, stock.Quantity)

	var movement domain.InventoryMovement
	require.NoError(t, s.db.Where("inventory_id = ?", stock.ID).First(&movement).Error)
	assert.Equal(t, domain.MovementProductionIn, movement.MovementType)
	assert.Equal(t, completed.BatchNumber, movement.Reference)
}

func TestProductionService_CreateValidation(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.AdminContext()

	_, err := s.production.Create(ctx, &domain.CreateProductionRequest{RecipeID: uuid.New(), PlannedQuantity: 5})
	var fieldErr *service.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "recipeId", fieldErr.Field)

	recipe := testutil.CreateRecipe(t, s.db, "Scones", nil, 12, nil)
	missing := uuid.New()
	_, err = s.production.Create(ctx, &domain.CreateProductionRequest{RecipeID: recipe.ID, WarehouseID: &missing, PlannedQuantity: 5})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "warehouseId", fieldErr.Field)
}
