// Package testutil builds throwaway SQLite databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/database"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate: true,
	}
	db, err := database.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// AdminContext returns a context authenticated as an admin user
func AdminContext() context.Context {
	return ContextWithRole(domain.RoleAdmin)
}

// ContextWithRole returns a context authenticated as a fresh user with role
func ContextWithRole(role domain.UserRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Name:   "Test " + string(role),
		Email:  "test@bakery.local",
		Role:   role,
	})
}

// ContextForUser returns a context authenticated as user
func ContextForUser(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// CreateUser inserts an active user with the given password
func CreateUser(t *testing.T, db *gorm.DB, email, password string, role domain.UserRole) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		Email:        email,
		Name:         "User " + email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProduct inserts an active product priced at price with reorderPoint
func CreateProduct(t *testing.T, db *gorm.DB, sku string, price string, reorderPoint float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		SKU:          sku,
		Name:         "Product " + sku,
		Category:     domain.CategoryBread,
		Unit:         domain.UnitPiece,
		Price:        decimal.RequireFromString(price),
		CostPrice:    decimal.Zero,
		ReorderPoint: reorderPoint,
		IsActive:     true,
		IsPublic:     true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateWarehouse inserts an active warehouse
func CreateWarehouse(t *testing.T, db *gorm.DB, code string) *domain.Warehouse {
	t.Helper()
	warehouse := &domain.Warehouse{
		Code:     code,
		Name:     "Warehouse " + code,
		City:     "Bergen",
		Capacity: 1000,
		IsActive: true,
	}
	require.NoError(t, db.Create(warehouse).Error)
	return warehouse
}

// CreateInventory inserts a stock row directly, without a movement
func CreateInventory(t *testing.T, db *gorm.DB, productID, warehouseID uuid.UUID, quantity, reserved float64) *domain.Inventory {
	t.Helper()
	inventory := &domain.Inventory{
		ProductID:        productID,
		WarehouseID:      warehouseID,
		Quantity:         quantity,
		ReservedQuantity: reserved,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(inventory).Error)
	return inventory
}

// CreateCustomer inserts an active individual customer
func CreateCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:         name,
		CustomerType: domain.CustomerTypeIndividual,
		IsActive:     true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(customer).Error)
	return customer
}

// CreateSupplier inserts an active supplier
func CreateSupplier(t *testing.T, db *gorm.DB, name string) *domain.Supplier {
	t.Helper()
	supplier := &domain.Supplier{Name: name, IsActive: true}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

// CreateRecipe inserts an active recipe producing output from the given ingredients.
// ingredients maps product id to quantity per batch.
func CreateRecipe(t *testing.T, db *gorm.DB, name string, output *domain.Product, yield float64, ingredients map[uuid.UUID]float64) *domain.Recipe {
	t.Helper()
	recipe := &domain.Recipe{
		Name:          name,
		YieldQuantity: yield,
		IsActive:      true,
	}
	if output != nil {
		recipe.OutputProductID = &output.ID
	}
	require.NoError(t, db.Omit(clause.Associations).Create(recipe).Error)

	for productID, qty := range ingredients {
		item := &domain.RecipeItem{
			RecipeID:  recipe.ID,
			ProductID: productID,
			Quantity:  qty,
			Unit:      domain.UnitKg,
		}
		require.NoError(t, db.Omit(clause.Associations).Create(item).Error)
	}
	return recipe
}

// InventoryQuantity reads the current quantity of an inventory row
func InventoryQuantity(t *testing.T, db *gorm.DB, id uuid.UUID) (quantity, reserved float64) {
	t.Helper()
	var inv domain.Inventory
	require.NoError(t, db.First(&inv, "id = ?", id).Error)
	return inv.Quantity, inv.ReservedQuantity
}

// CountMovements counts movements for an inventory row
func CountMovements(t *testing.T, db *gorm.DB, inventoryID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.InventoryMovement{}).Where("inventory_id = ?", inventoryID).Count(&n).Error)
	return n
}
