package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pagination describes one page of a list response
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit)
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ---- Auth ----

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ---- Users ----

type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email,max=255"`
	Name     string   `json:"name" validate:"required,max=200"`
	Phone    string   `json:"phone" validate:"max=50"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Role     UserRole `json:"role" validate:"required"`
}

type UpdateUserRequest struct {
	Email    *string   `json:"email" validate:"omitempty,email,max=255"`
	Name     *string   `json:"name" validate:"omitempty,max=200"`
	Phone    *string   `json:"phone" validate:"omitempty,max=50"`
	Password *string   `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *UserRole `json:"role"`
}

// SetActiveRequest toggles the active flag of any entity that has one
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ---- Customers ----

type CreateCustomerRequest struct {
	Name         string                          `json:"name" validate:"required,max=200"`
	Email        string                          `json:"email" validate:"omitempty,email,max=255"`
	Phone        string                          `json:"phone" validate:"max=50"`
	CustomerType CustomerType                    `json:"customerType"`
	CompanyName  string                          `json:"companyName" validate:"max=200"`
	TaxID        string                          `json:"taxId" validate:"max=50"`
	Notes        string                          `json:"notes"`
	Locations    []CreateCustomerLocationRequest `json:"locations" validate:"dive"`
}

type UpdateCustomerRequest struct {
	Name         *string       `json:"name" validate:"omitempty,max=200"`
	Email        *string       `json:"email" validate:"omitempty,email,max=255"`
	Phone        *string       `json:"phone" validate:"omitempty,max=50"`
	CustomerType *CustomerType `json:"customerType"`
	CompanyName  *string       `json:"companyName" validate:"omitempty,max=200"`
	TaxID        *string       `json:"taxId" validate:"omitempty,max=50"`
	Notes        *string       `json:"notes"`
}

type CreateCustomerLocationRequest struct {
	Label         string `json:"label" validate:"required,max=100"`
	Address       string `json:"address" validate:"required,max=500"`
	City          string `json:"city" validate:"max=100"`
	PostalCode    string `json:"postalCode" validate:"max=20"`
	DeliveryNotes string `json:"deliveryNotes"`
	IsDefault     bool   `json:"isDefault"`
}

type UpdateCustomerLocationRequest struct {
	Label         *string `json:"label" validate:"omitempty,max=100"`
	Address       *string `json:"address" validate:"omitempty,max=500"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postalCode" validate:"omitempty,max=20"`
	DeliveryNotes *string `json:"deliveryNotes"`
	IsDefault     *bool   `json:"isDefault"`
}

// ---- Products ----

type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,max=50"`
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description"`
	Category      ProductCategory `json:"category" validate:"required"`
	Unit          UnitType        `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	MinStockLevel float64         `json:"minStockLevel" validate:"gte=0"`
	MaxStockLevel float64         `json:"maxStockLevel" validate:"gte=0"`
	ReorderPoint  float64         `json:"reorderPoint" validate:"gte=0"`
	IsPublic      bool            `json:"isPublic"`
}

type UpdateProductRequest struct {
	SKU           *string          `json:"sku" validate:"omitempty,max=50"`
	Name          *string          `json:"name" validate:"omitempty,max=200"`
	Description   *string          `json:"description"`
	Category      *ProductCategory `json:"category"`
	Unit          *UnitType        `json:"unit"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	MinStockLevel *float64         `json:"minStockLevel" validate:"omitempty,gte=0"`
	MaxStockLevel *float64         `json:"maxStockLevel" validate:"omitempty,gte=0"`
	ReorderPoint  *float64         `json:"reorderPoint" validate:"omitempty,gte=0"`
	IsPublic      *bool            `json:"isPublic"`
}

// PublicProduct is the catalog view shown to anonymous visitors
type PublicProduct struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    ProductCategory `json:"category"`
	Unit        UnitType        `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	HasImage    bool            `json:"hasImage"`
}

// ---- Warehouses ----

type CreateWarehouseRequest struct {
	Code     string  `json:"code" validate:"required,max=30"`
	Name     string  `json:"name" validate:"required,max=200"`
	Address  string  `json:"address" validate:"max=500"`
	City     string  `json:"city" validate:"max=100"`
	Capacity float64 `json:"capacity" validate:"gte=0"`
}

type UpdateWarehouseRequest struct {
	Code     *string  `json:"code" validate:"omitempty,max=30"`
	Name     *string  `json:"name" validate:"omitempty,max=200"`
	Address  *string  `json:"address" validate:"omitempty,max=500"`
	City     *string  `json:"city" validate:"omitempty,max=100"`
	Capacity *float64 `json:"capacity" validate:"omitempty,gte=0"`
}

// ---- Suppliers ----

type CreateSupplierRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	ContactName  string `json:"contactName" validate:"max=200"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Phone        string `json:"phone" validate:"max=50"`
	Address      string `json:"address" validate:"max=500"`
	PaymentTerms string `json:"paymentTerms" validate:"max=100"`
	Notes        string `json:"notes"`
}

type UpdateSupplierRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	ContactName  *string `json:"contactName" validate:"omitempty,max=200"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	PaymentTerms *string `json:"paymentTerms" validate:"omitempty,max=100"`
	Notes        *string `json:"notes"`
}

// ---- Recipes ----

type RecipeItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"gt=0"`
	Unit      UnitType  `json:"unit"`
}

type CreateRecipeRequest struct {
	Name            string              `json:"name" validate:"required,max=200"`
	Description     string              `json:"description"`
	OutputProductID *uuid.UUID          `json:"outputProductId"`
	YieldQuantity   float64             `json:"yieldQuantity" validate:"gt=0"`
	PrepMinutes     int                 `json:"prepMinutes" validate:"gte=0"`
	BakeMinutes     int                 `json:"bakeMinutes" validate:"gte=0"`
	Instructions    string              `json:"instructions"`
	Items           []RecipeItemRequest `json:"items" validate:"dive"`
}

// UpdateRecipeRequest replaces all ingredient lines when Items is non-nil
type UpdateRecipeRequest struct {
	Name            *string              `json:"name" validate:"omitempty,max=200"`
	Description     *string              `json:"description"`
	OutputProductID *uuid.UUID           `json:"outputProductId"`
	YieldQuantity   *float64             `json:"yieldQuantity" validate:"omitempty,gt=0"`
	PrepMinutes     *int                 `json:"prepMinutes" validate:"omitempty,gte=0"`
	BakeMinutes     *int                 `json:"bakeMinutes" validate:"omitempty,gte=0"`
	Instructions    *string              `json:"instructions"`
	Items           *[]RecipeItemRequest `json:"items" validate:"omitempty,dive"`
}

// ---- Inventory ----

type CreateInventoryRequest struct {
	ProductID        uuid.UUID  `json:"productId" validate:"required"`
	WarehouseID      uuid.UUID  `json:"warehouseId" validate:"required"`
	Quantity         float64    `json:"quantity" validate:"gte=0"`
	ReservedQuantity float64    `json:"reservedQuantity" validate:"gte=0"`
	BatchNumber      string     `json:"batchNumber" validate:"max=100"`
	Location         string     `json:"location" validate:"max=100"`
	ExpiryDate       *time.Time `json:"expiryDate"`
	Notes            string     `json:"notes"`
}

// UpdateInventoryRequest edits metadata; a changed Quantity is logged as an adjustment
type UpdateInventoryRequest struct {
	Quantity         *float64   `json:"quantity" validate:"omitempty,gte=0"`
	ReservedQuantity *float64   `json:"reservedQuantity" validate:"omitempty,gte=0"`
	BatchNumber      *string    `json:"batchNumber" validate:"omitempty,max=100"`
	Location         *string    `json:"location" validate:"omitempty,max=100"`
	ExpiryDate       *time.Time `json:"expiryDate"`
	Notes            string     `json:"notes"`
}

type TransferInventoryRequest struct {
	SourceInventoryID      uuid.UUID `json:"sourceInventoryId" validate:"required"`
	DestinationWarehouseID uuid.UUID `json:"destinationWarehouseId" validate:"required"`
	Quantity               float64   `json:"quantity" validate:"gt=0"`
	Notes                  string    `json:"notes"`
}

type TransferResult struct {
	Source      *Inventory          `json:"source"`
	Destination *Inventory          `json:"destination"`
	Movements   []InventoryMovement `json:"movements"`
}

// AdjustInventoryRequest applies a signed delta
type AdjustInventoryRequest struct {
	Delta        float64      `json:"delta" validate:"required"`
	MovementType MovementType `json:"movementType"`
	Reference    string       `json:"reference" validate:"max=100"`
	Notes        string       `json:"notes"`
}

type ReserveInventoryRequest struct {
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	Reference string  `json:"reference" validate:"max=100"`
}

// ---- Orders ----

type OrderItemRequest struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  float64          `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

type CreateOrderRequest struct {
	CustomerID     uuid.UUID          `json:"customerId" validate:"required"`
	Channel        OrderChannel       `json:"channel"`
	Status         OrderStatus        `json:"status"`
	PaymentMethod  PaymentMethod      `json:"paymentMethod"`
	TaxAmount      decimal.Decimal    `json:"taxAmount"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Notes          string             `json:"notes"`
	DeliveryDate   *time.Time         `json:"deliveryDate"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest replaces all lines when Items is non-nil
type UpdateOrderRequest struct {
	PaymentMethod  *PaymentMethod      `json:"paymentMethod"`
	TaxAmount      *decimal.Decimal    `json:"taxAmount"`
	DiscountAmount *decimal.Decimal    `json:"discountAmount"`
	Notes          *string             `json:"notes"`
	DeliveryDate   *time.Time          `json:"deliveryDate"`
	Items          *[]OrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus  `json:"paymentStatus" validate:"required"`
	PaymentMethod *PaymentMethod `json:"paymentMethod"`
}

// ---- Point of sale ----

type POSItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"gt=0"`
}

type POSSaleRequest struct {
	WarehouseID    uuid.UUID        `json:"warehouseId" validate:"required"`
	CustomerID     *uuid.UUID       `json:"customerId"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod" validate:"required"`
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	Items          []POSItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ---- Productions ----

type ProductionItemRequest struct {
	ProductID       uuid.UUID `json:"productId" validate:"required"`
	PlannedQuantity float64   `json:"plannedQuantity" validate:"gt=0"`
	ActualQuantity  *float64  `json:"actualQuantity" validate:"omitempty,gte=0"`
}

type CreateProductionRequest struct {
	RecipeID        uuid.UUID               `json:"recipeId" validate:"required"`
	WarehouseID     *uuid.UUID              `json:"warehouseId"`
	PlannedQuantity float64                 `json:"plannedQuantity" validate:"gt=0"`
	StartDate       *time.Time              `json:"startDate"`
	Notes           string                  `json:"notes"`
	Items           []ProductionItemRequest `json:"items" validate:"dive"`
}

type UpdateProductionRequest struct {
	WarehouseID     *uuid.UUID               `json:"warehouseId"`
	PlannedQuantity *float64                 `json:"plannedQuantity" validate:"omitempty,gt=0"`
	StartDate       *time.Time               `json:"startDate"`
	Notes           *string                  `json:"notes"`
	Items           *[]ProductionItemRequest `json:"items" validate:"omitempty,dive"`
}

type UpdateProductionStatusRequest struct {
	Status         ProductionStatus `json:"status" validate:"required"`
	ActualQuantity *float64         `json:"actualQuantity" validate:"omitempty,gte=0"`
}

// ---- Deliveries ----

type CreateDeliveryRequest struct {
	OrderID            uuid.UUID  `json:"orderId" validate:"required"`
	CustomerLocationID *uuid.UUID `json:"customerLocationId"`
	AssignedToID       *uuid.UUID `json:"assignedToId"`
	ScheduledDate      *time.Time `json:"scheduledDate"`
	DriverName         string     `json:"driverName" validate:"max=200"`
	Vehicle            string     `json:"vehicle" validate:"max=100"`
	Carrier            string     `json:"carrier" validate:"max=100"`
	TrackingNumber     string     `json:"trackingNumber" validate:"max=100"`
	Notes              string     `json:"notes"`
}

type UpdateDeliveryRequest struct {
	CustomerLocationID *uuid.UUID `json:"customerLocationId"`
	AssignedToID       *uuid.UUID `json:"assignedToId"`
	ScheduledDate      *time.Time `json:"scheduledDate"`
	DriverName         *string    `json:"driverName" validate:"omitempty,max=200"`
	Vehicle            *string    `json:"vehicle" validate:"omitempty,max=100"`
	Carrier            *string    `json:"carrier" validate:"omitempty,max=100"`
	TrackingNumber     *string    `json:"trackingNumber" validate:"omitempty,max=100"`
	Notes              *string    `json:"notes"`
}

type UpdateDeliveryStatusRequest struct {
	Status DeliveryStatus `json:"status" validate:"required"`
	Notes  string         `json:"notes"`
}

// ---- Purchase orders ----

type PurchaseOrderItemRequest struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Quantity  float64         `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                  `json:"supplierId" validate:"required"`
	WarehouseID  uuid.UUID                  `json:"warehouseId" validate:"required"`
	OrderDate    *time.Time                 `json:"orderDate"`
	ExpectedDate *time.Time                 `json:"expectedDate"`
	Notes        string                     `json:"notes"`
	Items        []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdatePurchaseOrderRequest struct {
	WarehouseID  *uuid.UUID                  `json:"warehouseId"`
	ExpectedDate *time.Time                  `json:"expectedDate"`
	Notes        *string                     `json:"notes"`
	Items        *[]PurchaseOrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

type UpdatePurchaseOrderStatusRequest struct {
	Status PurchaseOrderStatus `json:"status" validate:"required"`
}

// ---- Notifications ----

type CreateNotificationRequest struct {
	Type        NotificationType `json:"type" validate:"required"`
	RecipientID *uuid.UUID       `json:"recipientId"`
	Channel     string           `json:"channel" validate:"omitempty,oneof=IN_APP EMAIL"`
	Title       string           `json:"title" validate:"required,max=200"`
	Message     string           `json:"message" validate:"required,max=1000"`
	EntityType  string           `json:"entityType" validate:"max=50"`
	EntityID    *uuid.UUID       `json:"entityId"`
}

// ---- Reports ----

type DailyBucket struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  float64         `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	Period            ReportPeriod    `json:"period"`
	OrderCount        int             `json:"orderCount"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	ByStatus          map[string]int  `json:"byStatus"`
	ByChannel         map[string]int  `json:"byChannel"`
	Daily             []DailyBucket   `json:"daily"`
	TopProducts       []ProductSales  `json:"topProducts"`
}

type StockAlert struct {
	InventoryID   uuid.UUID  `json:"inventoryId"`
	ProductID     uuid.UUID  `json:"productId"`
	ProductName   string     `json:"productName"`
	SKU           string     `json:"sku"`
	WarehouseID   uuid.UUID  `json:"warehouseId"`
	WarehouseName string     `json:"warehouseName"`
	Quantity      float64    `json:"quantity"`
	Available     float64    `json:"available"`
	ReorderPoint  float64    `json:"reorderPoint"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
}

type WarehouseStock struct {
	WarehouseID   uuid.UUID `json:"warehouseId"`
	WarehouseName string    `json:"warehouseName"`
	Rows          int       `json:"rows"`
	Quantity      float64   `json:"quantity"`
	Reserved      float64   `json:"reserved"`
}

type InventoryReport struct {
	Period         ReportPeriod     `json:"period"`
	TotalRows      int              `json:"totalRows"`
	TotalProducts  int              `json:"totalProducts"`
	TotalQuantity  float64          `json:"totalQuantity"`
	TotalReserved  float64          `json:"totalReserved"`
	StockValue     decimal.Decimal  `json:"stockValue"`
	LowStock       []StockAlert     `json:"lowStock"`
	ExpiringSoon   []StockAlert     `json:"expiringSoon"`
	ByWarehouse    []WarehouseStock `json:"byWarehouse"`
	MovementCounts map[string]int   `json:"movementCounts"`
}

type ProductionReport struct {
	Period          ReportPeriod   `json:"period"`
	Batches         int            `json:"batches"`
	ByStatus        map[string]int `json:"byStatus"`
	PlannedQuantity float64        `json:"plannedQuantity"`
	ActualQuantity  float64        `json:"actualQuantity"`
	CompletionRate  float64        `json:"completionRate"`
	YieldRate       float64        `json:"yieldRate"`
}

type DeliveryReport struct {
	Period      ReportPeriod   `json:"period"`
	Deliveries  int            `json:"deliveries"`
	ByStatus    map[string]int `json:"byStatus"`
	OnTime      int            `json:"onTime"`
	Late        int            `json:"late"`
	OnTimeRate  float64        `json:"onTimeRate"`
	SuccessRate float64        `json:"successRate"`
}

type DashboardReport struct {
	Date                string          `json:"date"`
	OrdersToday         int             `json:"ordersToday"`
	RevenueToday        decimal.Decimal `json:"revenueToday"`
	PendingOrders       int64           `json:"pendingOrders"`
	ActiveProductions   int64           `json:"activeProductions"`
	DeliveriesToday     int64           `json:"deliveriesToday"`
	LowStockCount       int             `json:"lowStockCount"`
	UnreadNotifications int64           `json:"unreadNotifications"`
}
