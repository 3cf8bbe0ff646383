package domain

// Permission is a single capability checked by the role gate
type Permission string

const (
	PermissionUsersRead   Permission = "users:read"
	PermissionUsersWrite  Permission = "users:write"
	PermissionUsersDelete Permission = "users:delete"

	PermissionCustomersRead   Permission = "customers:read"
	PermissionCustomersWrite  Permission = "customers:write"
	PermissionCustomersDelete Permission = "customers:delete"

	PermissionProductsRead   Permission = "products:read"
	PermissionProductsWrite  Permission = "products:write"
	PermissionProductsDelete Permission = "products:delete"

	PermissionWarehousesRead   Permission = "warehouses:read"
	PermissionWarehousesWrite  Permission = "warehouses:write"
	PermissionWarehousesDelete Permission = "warehouses:delete"

	PermissionSuppliersRead   Permission = "suppliers:read"
	PermissionSuppliersWrite  Permission = "suppliers:write"
	PermissionSuppliersDelete Permission = "suppliers:delete"

	PermissionInventoryRead     Permission = "inventory:read"
	PermissionInventoryWrite    Permission = "inventory:write"
	PermissionInventoryDelete   Permission = "inventory:delete"
	PermissionInventoryTransfer Permission = "inventory:transfer"

	PermissionOrdersRead   Permission = "orders:read"
	PermissionOrdersWrite  Permission = "orders:write"
	PermissionOrdersDelete Permission = "orders:delete"

	PermissionPOSSell Permission = "pos:sell"

	PermissionProductionRead   Permission = "production:read"
	PermissionProductionWrite  Permission = "production:write"
	PermissionProductionDelete Permission = "production:delete"

	PermissionRecipesRead   Permission = "recipes:read"
	PermissionRecipesWrite  Permission = "recipes:write"
	PermissionRecipesDelete Permission = "recipes:delete"

	PermissionDeliveriesRead   Permission = "deliveries:read"
	PermissionDeliveriesWrite  Permission = "deliveries:write"
	PermissionDeliveriesDelete Permission = "deliveries:delete"

	PermissionPurchasingRead   Permission = "purchasing:read"
	PermissionPurchasingWrite  Permission = "purchasing:write"
	PermissionPurchasingDelete Permission = "purchasing:delete"

	PermissionNotificationsRead   Permission = "notifications:read"
	PermissionNotificationsManage Permission = "notifications:manage"

	PermissionReportsView   Permission = "reports:view"
	PermissionReportsExport Permission = "reports:export"
)

// AllPermissions lists every permission, used for the admin role
var AllPermissions = []Permission{
	PermissionUsersRead, PermissionUsersWrite, PermissionUsersDelete,
	PermissionCustomersRead, PermissionCustomersWrite, PermissionCustomersDelete,
	PermissionProductsRead, PermissionProductsWrite, PermissionProductsDelete,
	PermissionWarehousesRead, PermissionWarehousesWrite, PermissionWarehousesDelete,
	PermissionSuppliersRead, PermissionSuppliersWrite, PermissionSuppliersDelete,
	PermissionInventoryRead, PermissionInventoryWrite, PermissionInventoryDelete, PermissionInventoryTransfer,
	PermissionOrdersRead, PermissionOrdersWrite, PermissionOrdersDelete,
	PermissionPOSSell,
	PermissionProductionRead, PermissionProductionWrite, PermissionProductionDelete,
	PermissionRecipesRead, PermissionRecipesWrite, PermissionRecipesDelete,
	PermissionDeliveriesRead, PermissionDeliveriesWrite, PermissionDeliveriesDelete,
	PermissionPurchasingRead, PermissionPurchasingWrite, PermissionPurchasingDelete,
	PermissionNotificationsRead, PermissionNotificationsManage,
	PermissionReportsView, PermissionReportsExport,
}
