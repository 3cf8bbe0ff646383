package domain

// UserRole is the single role a staff account holds
type UserRole string

const (
	RoleAdmin             UserRole = "ADMIN"
	RoleStoreManager      UserRole = "STORE_MANAGER"
	RoleProductionManager UserRole = "PRODUCTION_MANAGER"
	RoleInventoryManager  UserRole = "INVENTORY_MANAGER"
	RoleSalesStaff        UserRole = "SALES_STAFF"
	RoleCashier           UserRole = "CASHIER"
	RoleDeliveryStaff     UserRole = "DELIVERY_STAFF"
)

// AllRoles lists every role
var AllRoles = []UserRole{
	RoleAdmin,
	RoleStoreManager,
	RoleProductionManager,
	RoleInventoryManager,
	RoleSalesStaff,
	RoleCashier,
	RoleDeliveryStaff,
}

func (r UserRole) IsValid() bool { return contains(AllRoles, r) }

// CustomerType tags how a customer buys
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "INDIVIDUAL"
	CustomerTypeB2B        CustomerType = "B2B"
	CustomerTypeCommunity  CustomerType = "COMMUNITY"
)

func (c CustomerType) IsValid() bool {
	return contains([]CustomerType{CustomerTypeIndividual, CustomerTypeB2B, CustomerTypeCommunity}, c)
}

// ProductCategory groups products in the catalog
type ProductCategory string

const (
	CategoryBread      ProductCategory = "BREAD"
	CategoryPastry     ProductCategory = "PASTRY"
	CategoryCake       ProductCategory = "CAKE"
	CategoryCookie     ProductCategory = "COOKIE"
	CategorySandwich   ProductCategory = "SANDWICH"
	CategoryBeverage   ProductCategory = "BEVERAGE"
	CategoryIngredient ProductCategory = "INGREDIENT"
	CategoryPackaging  ProductCategory = "PACKAGING"
	CategoryOther      ProductCategory = "OTHER"
)

func (c ProductCategory) IsValid() bool {
	return contains([]ProductCategory{
		CategoryBread, CategoryPastry, CategoryCake, CategoryCookie, CategorySandwich,
		CategoryBeverage, CategoryIngredient, CategoryPackaging, CategoryOther,
	}, c)
}

// UnitType is the unit a product is counted in
type UnitType string

const (
	UnitPiece UnitType = "PIECE"
	UnitKg    UnitType = "KG"
	UnitGram  UnitType = "GRAM"
	UnitLiter UnitType = "LITER"
	UnitMl    UnitType = "ML"
	UnitDozen UnitType = "DOZEN"
	UnitBox   UnitType = "BOX"
)

func (u UnitType) IsValid() bool {
	return contains([]UnitType{UnitPiece, UnitKg, UnitGram, UnitLiter, UnitMl, UnitDozen, UnitBox}, u)
}

// MovementType tags an inventory movement
type MovementType string

const (
	MovementIn            MovementType = "IN"
	MovementOut           MovementType = "OUT"
	MovementAdjustment    MovementType = "ADJUSTMENT"
	MovementTransferIn    MovementType = "TRANSFER_IN"
	MovementTransferOut   MovementType = "TRANSFER_OUT"
	MovementSale          MovementType = "SALE"
	MovementProductionIn  MovementType = "PRODUCTION_IN"
	MovementProductionOut MovementType = "PRODUCTION_OUT"
	MovementPurchaseIn    MovementType = "PURCHASE_IN"
	MovementReturn        MovementType = "RETURN"
	MovementWaste         MovementType = "WASTE"
)

func (m MovementType) IsValid() bool {
	return contains([]MovementType{
		MovementIn, MovementOut, MovementAdjustment, MovementTransferIn, MovementTransferOut,
		MovementSale, MovementProductionIn, MovementProductionOut, MovementPurchaseIn,
		MovementReturn, MovementWaste,
	}, m)
}

// PaymentStatus tracks how much of an order has been paid
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentRefunded      PaymentStatus = "REFUNDED"
)

func (p PaymentStatus) IsValid() bool {
	return contains([]PaymentStatus{PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid, PaymentRefunded}, p)
}

// PaymentMethod is how an order was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodInvoice  PaymentMethod = "INVOICE"
)

func (p PaymentMethod) IsValid() bool {
	return contains([]PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodInvoice}, p)
}

// OrderChannel is where an order came from
type OrderChannel string

const (
	ChannelOnline OrderChannel = "ONLINE"
	ChannelPhone  OrderChannel = "PHONE"
	ChannelPOS    OrderChannel = "POS"
	ChannelB2B    OrderChannel = "B2B"
)

func (c OrderChannel) IsValid() bool {
	return contains([]OrderChannel{ChannelOnline, ChannelPhone, ChannelPOS, ChannelB2B}, c)
}

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationLowStock         NotificationType = "LOW_STOCK"
	NotificationOrderStatus      NotificationType = "ORDER_STATUS"
	NotificationDeliveryStatus   NotificationType = "DELIVERY_STATUS"
	NotificationProductionStatus NotificationType = "PRODUCTION_STATUS"
	NotificationSystem           NotificationType = "SYSTEM"
)

func (n NotificationType) IsValid() bool {
	return contains([]NotificationType{
		NotificationLowStock, NotificationOrderStatus, NotificationDeliveryStatus,
		NotificationProductionStatus, NotificationSystem,
	}, n)
}

// NotificationStatus is the delivery state of a notification
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification channels
const (
	ChannelInApp = "IN_APP"
	ChannelEmail = "EMAIL"
)

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
