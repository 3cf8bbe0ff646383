package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a random ID unless one was set by the caller.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User is a staff account that can sign in to the API
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string     `gorm:"type:varchar(200);not null" json:"name"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(50);not null;index" json:"role"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// Customer buys from the bakery, either walk-in, business or community group
type Customer struct {
	BaseModel
	Name         string             `gorm:"type:varchar(200);not null;index" json:"name"`
	Email        string             `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone        string             `gorm:"type:varchar(50)" json:"phone,omitempty"`
	CustomerType CustomerType       `gorm:"type:varchar(20);not null;index" json:"customerType"`
	CompanyName  string             `gorm:"type:varchar(200)" json:"companyName,omitempty"`
	TaxID        string             `gorm:"type:varchar(50)" json:"taxId,omitempty"`
	Notes        string             `gorm:"type:text" json:"notes,omitempty"`
	IsActive     bool               `gorm:"not null" json:"isActive"`
	Locations    []CustomerLocation `gorm:"foreignKey:CustomerID" json:"locations,omitempty"`
}

// CustomerLocation is a delivery address owned by a customer
type CustomerLocation struct {
	BaseModel
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"customerId"`
	Label         string    `gorm:"type:varchar(100);not null" json:"label"`
	Address       string    `gorm:"type:varchar(500);not null" json:"address"`
	City          string    `gorm:"type:varchar(100)" json:"city,omitempty"`
	PostalCode    string    `gorm:"type:varchar(20)" json:"postalCode,omitempty"`
	DeliveryNotes string    `gorm:"type:text" json:"deliveryNotes,omitempty"`
	IsDefault     bool      `gorm:"not null" json:"isDefault"`
}

// Product is anything the bakery stocks: finished goods, ingredients or packaging
type Product struct {
	BaseModel
	SKU              string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex" json:"sku"`
	Name             string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Description      string          `gorm:"type:text" json:"description,omitempty"`
	Category         ProductCategory `gorm:"type:varchar(30);not null;index" json:"category"`
	Unit             UnitType        `gorm:"type:varchar(20);not null" json:"unit"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CostPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"costPrice"`
	MinStockLevel    float64         `gorm:"not null" json:"minStockLevel"`
	MaxStockLevel    float64         `gorm:"not null" json:"maxStockLevel"`
	ReorderPoint     float64         `gorm:"not null" json:"reorderPoint"`
	IsActive         bool            `gorm:"not null;index" json:"isActive"`
	IsPublic         bool            `gorm:"not null" json:"isPublic"`
	ImagePath        string          `gorm:"type:varchar(500)" json:"imagePath,omitempty"`
	ImageContentType string          `gorm:"type:varchar(100)" json:"-"`
}

// Warehouse is a physical stock location (shop floor, cold room, central store)
type Warehouse struct {
	BaseModel
	Code     string  `gorm:"type:varchar(30);not null;uniqueIndex" json:"code"`
	Name     string  `gorm:"type:varchar(200);not null" json:"name"`
	Address  string  `gorm:"type:varchar(500)" json:"address,omitempty"`
	City     string  `gorm:"type:varchar(100)" json:"city,omitempty"`
	Capacity float64 `gorm:"not null" json:"capacity"`
	IsActive bool    `gorm:"not null" json:"isActive"`
}

// Supplier delivers ingredients and packaging
type Supplier struct {
	BaseModel
	Name         string `gorm:"type:varchar(200);not null;index" json:"name"`
	ContactName  string `gorm:"type:varchar(200)" json:"contactName,omitempty"`
	Email        string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address      string `gorm:"type:varchar(500)" json:"address,omitempty"`
	PaymentTerms string `gorm:"type:varchar(100)" json:"paymentTerms,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	IsActive     bool   `gorm:"not null" json:"isActive"`
}

// Recipe describes how one batch of a product is made
type Recipe struct {
	BaseModel
	Name            string       `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	OutputProductID *uuid.UUID   `gorm:"type:uuid;index" json:"outputProductId,omitempty"`
	OutputProduct   *Product     `gorm:"foreignKey:OutputProductID" json:"outputProduct,omitempty"`
	YieldQuantity   float64      `gorm:"not null" json:"yieldQuantity"`
	PrepMinutes     int          `gorm:"not null" json:"prepMinutes"`
	BakeMinutes     int          `gorm:"not null" json:"bakeMinutes"`
	Instructions    string       `gorm:"type:text" json:"instructions,omitempty"`
	IsActive        bool         `gorm:"not null" json:"isActive"`
	Items           []RecipeItem `gorm:"foreignKey:RecipeID" json:"items,omitempty"`
}

// RecipeItem is one ingredient line of a recipe
type RecipeItem struct {
	BaseModel
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      UnitType  `gorm:"type:varchar(20);not null" json:"unit"`
}

// Inventory is the stock of one product in one warehouse.
// Quantity never drops below zero and ReservedQuantity never exceeds Quantity.
type Inventory struct {
	BaseModel
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse" json:"productId"`
	Product          *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WarehouseID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse;index" json:"warehouseId"`
	Warehouse        *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Quantity         float64    `gorm:"not null" json:"quantity"`
	ReservedQuantity float64    `gorm:"not null" json:"reservedQuantity"`
	BatchNumber      string     `gorm:"type:varchar(100)" json:"batchNumber,omitempty"`
	Location         string     `gorm:"type:varchar(100)" json:"location,omitempty"`
	ExpiryDate       *time.Time `gorm:"index" json:"expiryDate,omitempty"`
}

// Available is the quantity that may be sold or transferred
func (i *Inventory) Available() float64 {
	return i.Quantity - i.ReservedQuantity
}

// InventoryMovement is an append-only record of one stock change.
// Quantity is signed: negative values leave the inventory row.
type InventoryMovement struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"inventoryId"`
	ProductID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"productId"`
	WarehouseID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"warehouseId"`
	MovementType    MovementType `gorm:"type:varchar(30);not null;index" json:"movementType"`
	Quantity        float64      `gorm:"not null" json:"quantity"`
	QuantityBefore  float64      `gorm:"not null" json:"quantityBefore"`
	QuantityAfter   float64      `gorm:"not null" json:"quantityAfter"`
	Reference       string       `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	Notes           string       `gorm:"type:text" json:"notes,omitempty"`
	PerformedByID   *uuid.UUID   `gorm:"type:uuid" json:"performedById,omitempty"`
	PerformedByName string       `gorm:"type:varchar(200)" json:"performedByName,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate assigns a random ID unless one was set by the caller.
func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Order is a customer order from any sales channel
type Order struct {
	BaseModel
	OrderNumber    string          `gorm:"type:varchar(30);not null;uniqueIndex" json:"orderNumber"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index" json:"customerId,omitempty"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status         OrderStatus     `gorm:"type:varchar(30);not null;index" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(30);not null;index" json:"paymentStatus"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(30)" json:"paymentMethod,omitempty"`
	Channel        OrderChannel    `gorm:"type:varchar(20);not null" json:"channel"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"taxAmount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discountAmount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	DeliveryDate   *time.Time      `json:"deliveryDate,omitempty"`
	DeliveredAt    *time.Time      `json:"deliveredAt,omitempty"`
	CreatedByID    *uuid.UUID      `gorm:"type:uuid" json:"createdById,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one product line of an order
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  float64         `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lineTotal"`
}

// Production is a planned or running production batch
type Production struct {
	BaseModel
	BatchNumber     string           `gorm:"type:varchar(30);not null;uniqueIndex" json:"batchNumber"`
	RecipeID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipeId"`
	Recipe          *Recipe          `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	WarehouseID     *uuid.UUID       `gorm:"type:uuid;index" json:"warehouseId,omitempty"`
	PlannedQuantity float64          `gorm:"not null" json:"plannedQuantity"`
	ActualQuantity  *float64         `json:"actualQuantity,omitempty"`
	Status          ProductionStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	EndDate         *time.Time       `json:"endDate,omitempty"`
	Notes           string           `gorm:"type:text" json:"notes,omitempty"`
	Items           []ProductionItem `gorm:"foreignKey:ProductionID" json:"items,omitempty"`
}

// ProductionItem is one output or consumption line of a production batch
type ProductionItem struct {
	BaseModel
	ProductionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"productionId"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Product         *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	PlannedQuantity float64   `gorm:"not null" json:"plannedQuantity"`
	ActualQuantity  *float64  `json:"actualQuantity,omitempty"`
}

// Delivery tracks getting an order to a customer location
type Delivery struct {
	BaseModel
	DeliveryNumber     string            `gorm:"type:varchar(30);not null;uniqueIndex" json:"deliveryNumber"`
	OrderID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"orderId"`
	Order              *Order            `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CustomerLocationID *uuid.UUID        `gorm:"type:uuid" json:"customerLocationId,omitempty"`
	CustomerLocation   *CustomerLocation `gorm:"foreignKey:CustomerLocationID" json:"customerLocation,omitempty"`
	AssignedToID       *uuid.UUID        `gorm:"type:uuid;index" json:"assignedToId,omitempty"`
	Status             DeliveryStatus    `gorm:"type:varchar(30);not null;index" json:"status"`
	ScheduledDate      *time.Time        `gorm:"index" json:"scheduledDate,omitempty"`
	DeliveredAt        *time.Time        `json:"deliveredAt,omitempty"`
	DriverName         string            `gorm:"type:varchar(200)" json:"driverName,omitempty"`
	Vehicle            string            `gorm:"type:varchar(100)" json:"vehicle,omitempty"`
	Carrier            string            `gorm:"type:varchar(100)" json:"carrier,omitempty"`
	TrackingNumber     string            `gorm:"type:varchar(100)" json:"trackingNumber,omitempty"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
}

// PurchaseOrder is stock ordered from a supplier into a warehouse
type PurchaseOrder struct {
	BaseModel
	PONumber     string              `gorm:"column:po_number;type:varchar(30);not null;uniqueIndex" json:"poNumber"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier     *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	WarehouseID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"warehouseId"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	OrderDate    time.Time           `gorm:"not null" json:"orderDate"`
	ExpectedDate *time.Time          `json:"expectedDate,omitempty"`
	ReceivedAt   *time.Time          `json:"receivedAt,omitempty"`
	TotalAmount  decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Notes        string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedByID  *uuid.UUID          `gorm:"type:uuid" json:"createdById,omitempty"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// PurchaseOrderItem is one product line of a purchase order
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseOrderId"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity        float64         `gorm:"not null" json:"quantity"`
	UnitCost        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitCost"`
	LineTotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lineTotal"`
}

// Notification is a message queued for a user, or for all managers when RecipientID is nil
type Notification struct {
	BaseModel
	Type        NotificationType   `gorm:"type:varchar(30);not null;index" json:"type"`
	RecipientID *uuid.UUID         `gorm:"type:uuid;index" json:"recipientId,omitempty"`
	Channel     string             `gorm:"type:varchar(20);not null" json:"channel"`
	Title       string             `gorm:"type:varchar(200);not null" json:"title"`
	Message     string             `gorm:"type:varchar(1000);not null" json:"message"`
	Status      NotificationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	SentAt      *time.Time         `json:"sentAt,omitempty"`
	ReadAt      *time.Time         `json:"readAt,omitempty"`
	Error       string             `gorm:"type:varchar(500)" json:"error,omitempty"`
	EntityType  string             `gorm:"type:varchar(50)" json:"entityType,omitempty"`
	EntityID    *uuid.UUID         `gorm:"type:uuid;index" json:"entityId,omitempty"`
}

// NumberSequence stores the last issued sequence per prefix and year
type NumberSequence struct {
	BaseModel
	Prefix       string `gorm:"type:varchar(10);not null;uniqueIndex:idx_number_sequence_prefix_year"`
	Year         int    `gorm:"not null;uniqueIndex:idx_number_sequence_prefix_year"`
	LastSequence int    `gorm:"not null"`
}

// AllModels lists every persisted model in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&CustomerLocation{},
		&Product{},
		&Warehouse{},
		&Supplier{},
		&Recipe{},
		&RecipeItem{},
		&Inventory{},
		&InventoryMovement{},
		&Order{},
		&OrderItem{},
		&Production{},
		&ProductionItem{},
		&Delivery{},
		&PurchaseOrder{},
		&PurchaseOrderItem{},
		&Notification{},
		&NumberSequence{},
	}
}
