package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSameWarehouse is returned when a transfer targets the source warehouse
	ErrSameWarehouse = errors.New("source and destination warehouse are the same")
	// ErrReleaseExceedsReserved is returned when releasing more than is reserved
	ErrReleaseExceedsReserved = errors.New("release exceeds reserved quantity")
)

// ShortageError reports a stock decrement the row cannot cover
type ShortageError struct {
	InventoryID uuid.UUID
	Available   float64
	Requested   float64
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient stock in inventory %s: available %.3f, requested %.3f", e.InventoryID, e.Available, e.Requested)
}

// InventoryFilters defines filter options for inventory listing
type InventoryFilters struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	LowStock    bool
	// ExpiringBefore keeps rows with an expiry date before the given time
	ExpiringBefore *time.Time
}

var inventorySortableFields = map[string]string{
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"quantity":         "quantity",
	"reservedQuantity": "reserved_quantity",
	"expiryDate":       "expiry_date",
	"batchNumber":      "batch_number",
}

// MovementFilters defines filter options for movement listing
type MovementFilters struct {
	InventoryID  *uuid.UUID
	ProductID    *uuid.UUID
	WarehouseID  *uuid.UUID
	MovementType *domain.MovementType
	Reference    string
}

var movementSortableFields = map[string]string{
	"createdAt":    "created_at",
	"quantity":     "quantity",
	"movementType": "movement_type",
}

// MovementInfo is the descriptive part of a stock movement
type MovementInfo struct {
	Reference       string
	Notes           string
	PerformedByID   *uuid.UUID
	PerformedByName string
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

func (r *InventoryRepository) Create(ctx context.Context, inventory *domain.Inventory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(inventory).Error
}

// GetByID loads an inventory row with its product and warehouse
func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Warehouse").
		First(&inventory, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

// GetByProductAndWarehouse returns the row for the pair, or nil when there is none
func (r *InventoryRepository) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&inventory).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &inventory, nil
}

// Update saves metadata columns. Quantities go through ApplyMovement.
func (r *InventoryRepository) Update(ctx context.Context, inventory *domain.Inventory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(inventory).Error
}

// CountMovements returns how many movements reference the inventory row
func (r *InventoryRepository) CountMovements(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.InventoryMovement{}).Where("inventory_id = ?", id).Count(&count).Error
	return count, err
}

func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Inventory{}, "id = ?", id).Error
}

func (r *InventoryRepository) List(ctx context.Context, filters *InventoryFilters, opts ListOptions) ([]domain.Inventory, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Inventory{})

	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(batch_number) LIKE ? OR LOWER(location) LIKE ? OR product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? OR LOWER(sku) LIKE ?))",
			pattern, pattern, pattern, pattern,
		)
	}
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.ProductID != nil {
			query = query.Where("product_id = ?", *filters.ProductID)
		}
		if filters.WarehouseID != nil {
			query = query.Where("warehouse_id = ?", *filters.WarehouseID)
		}
		if filters.LowStock {
			query = query.Where(lowStockCondition)
		}
		if filters.ExpiringBefore != nil {
			query = query.Where("expiry_date IS NOT NULL AND expiry_date < ?", *filters.ExpiringBefore)
		}
	}

	var rows []domain.Inventory
	total, err := paginate(query, opts, inventorySortableFields, "created_at", &rows, "Product", "Warehouse")
	return rows, total, err
}

const lowStockCondition = "quantity <= (SELECT reorder_point FROM products WHERE products.id = inventories.product_id)"

// ListLowStock returns every row at or below its product's reorder point
func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	var rows []domain.Inventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Warehouse").
		Where(lowStockCondition).
		Order("quantity ASC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every inventory row with product and warehouse, for reporting
func (r *InventoryRepository) ListAll(ctx context.Context) ([]domain.Inventory, error) {
	var rows []domain.Inventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Warehouse").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// LockByID loads a row with SELECT ... FOR UPDATE. Call it inside a transaction.
func (r *InventoryRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inventory, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

// LockOrCreate locks the row for product and warehouse, creating an empty one when missing
func (r *InventoryRepository) LockOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*domain.Inventory, bool, error) {
	var inventory domain.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&inventory).Error
	if err == nil {
		return &inventory, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	inventory = domain.Inventory{ProductID: productID, WarehouseID: warehouseID}
	if err := r.Create(ctx, &inventory); err != nil {
		return nil, false, fmt.Errorf("failed to create inventory row: %w", err)
	}
	return &inventory, true, nil
}

// ApplyMovement changes the row's quantity by delta and appends the matching movement.
// Decrements are guarded so quantity never drops below the reserved quantity;
// a rejected decrement returns *ShortageError and writes nothing.
func (r *InventoryRepository) ApplyMovement(ctx context.Context, inv *domain.Inventory, movementType domain.MovementType, delta float64, info MovementInfo) (*domain.InventoryMovement, error) {
	now := time.Now().UTC()
	before := inv.Quantity

	query := r.db.WithContext(ctx).Model(&domain.Inventory{}).Where("id = ?", inv.ID)
	if delta < 0 {
		query = query.Where("quantity - reserved_quantity >= ?", -delta)
	}
	result := query.Updates(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": now,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update inventory quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &ShortageError{InventoryID: inv.ID, Available: inv.Available(), Requested: -delta}
	}
	inv.Quantity += delta
	inv.UpdatedAt = now

	movement := &domain.InventoryMovement{
		InventoryID:     inv.ID,
		ProductID:       inv.ProductID,
		WarehouseID:     inv.WarehouseID,
		MovementType:    movementType,
		Quantity:        delta,
		QuantityBefore:  before,
		QuantityAfter:   inv.Quantity,
		Reference:       info.Reference,
		Notes:           info.Notes,
		PerformedByID:   info.PerformedByID,
		PerformedByName: info.PerformedByName,
		CreatedAt:       now,
	}
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record inventory movement: %w", err)
	}
	return movement, nil
}

// Reserve moves quantity from available into reserved
func (r *InventoryRepository) Reserve(ctx context.Context, inv *domain.Inventory, quantity float64) error {
	result := r.db.WithContext(ctx).Model(&domain.Inventory{}).
		Where("id = ? AND quantity - reserved_quantity >= ?", inv.ID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", quantity),
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ShortageError{InventoryID: inv.ID, Available: inv.Available(), Requested: quantity}
	}
	inv.ReservedQuantity += quantity
	return nil
}

// Release returns reserved quantity to available
func (r *InventoryRepository) Release(ctx context.Context, inv *domain.Inventory, quantity float64) error {
	result := r.db.WithContext(ctx).Model(&domain.Inventory{}).
		Where("id = ? AND reserved_quantity >= ?", inv.ID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReleaseExceedsReserved
	}
	inv.ReservedQuantity -= quantity
	return nil
}

// TransferParams describes a stock transfer between warehouses
type TransferParams struct {
	SourceInventoryID      uuid.UUID
	DestinationWarehouseID uuid.UUID
	Quantity               float64
	Info                   MovementInfo
}

// TransferOutcome is the state after a committed transfer
type TransferOutcome struct {
	Source      *domain.Inventory
	Destination *domain.Inventory
	Movements   []domain.InventoryMovement
}

// Transfer moves stock from one inventory row into the same product's row in another
// warehouse. The source is locked, the destination is found or created and locked,
// and both quantity changes plus their TRANSFER_OUT/TRANSFER_IN movements commit together.
func (r *InventoryRepository) Transfer(ctx context.Context, p TransferParams) (*TransferOutcome, error) {
	var outcome *TransferOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)

		source, err := txRepo.LockByID(ctx, p.SourceInventoryID)
		if err != nil {
			return err
		}
		if source.WarehouseID == p.DestinationWarehouseID {
			return ErrSameWarehouse
		}
		if source.Available() < p.Quantity {
			return &ShortageError{InventoryID: source.ID, Available: source.Available(), Requested: p.Quantity}
		}

		destination, _, err := txRepo.LockOrCreate(ctx, source.ProductID, p.DestinationWarehouseID)
		if err != nil {
			return err
		}

		out, err := txRepo.ApplyMovement(ctx, source, domain.MovementTransferOut, -p.Quantity, p.Info)
		if err != nil {
			return err
		}
		in, err := txRepo.ApplyMovement(ctx, destination, domain.MovementTransferIn, p.Quantity, p.Info)
		if err != nil {
			return err
		}

		outcome = &TransferOutcome{
			Source:      source,
			Destination: destination,
			Movements:   []domain.InventoryMovement{*out, *in},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ListMovements returns a page of movements, newest first by default
func (r *InventoryRepository) ListMovements(ctx context.Context, filters *MovementFilters, opts ListOptions) ([]domain.InventoryMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.InventoryMovement{})
	query = applySearch(query, opts.Search, "reference", "notes", "performed_by_name")
	query = applyDateRange(query, "created_at", opts.DateRange, opts.Now)

	if filters != nil {
		if filters.InventoryID != nil {
			query = query.Where("inventory_id = ?", *filters.InventoryID)
		}
		if filters.ProductID != nil {
			query = query.Where("product_id = ?", *filters.ProductID)
		}
		if filters.WarehouseID != nil {
			query = query.Where("warehouse_id = ?", *filters.WarehouseID)
		}
		if filters.MovementType != nil {
			query = query.Where("movement_type = ?", *filters.MovementType)
		}
		if filters.Reference != "" {
			query = query.Where("reference = ?", filters.Reference)
		}
	}

	var movements []domain.InventoryMovement
	total, err := paginate(query, opts, movementSortableFields, "created_at", &movements)
	return movements, total, err
}

// CountMovementsByType counts movements created in [start, end) per type
func (r *InventoryRepository) CountMovementsByType(ctx context.Context, start, end time.Time) (map[string]int, error) {
	var movements []domain.InventoryMovement
	err := r.db.WithContext(ctx).
		Select("movement_type").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, m := range movements {
		counts[string(m.MovementType)]++
	}
	return counts, nil
}
