package auth

import "github.com/crumbhouse/bakery-api/internal/domain"

// RolePermissions is the single permission table. ADMIN is granted everything.
var RolePermissions = map[domain.UserRole][]domain.Permission{
	domain.RoleAdmin: domain.AllPermissions,
	domain.RoleStoreManager: {
		domain.PermissionUsersRead,
		domain.PermissionCustomersRead, domain.PermissionCustomersWrite, domain.PermissionCustomersDelete,
		domain.PermissionProductsRead, domain.PermissionProductsWrite, domain.PermissionProductsDelete,
		domain.PermissionWarehousesRead, domain.PermissionWarehousesWrite,
		domain.PermissionSuppliersRead, domain.PermissionSuppliersWrite,
		domain.PermissionInventoryRead, domain.PermissionInventoryWrite, domain.PermissionInventoryTransfer,
		domain.PermissionOrdersRead, domain.PermissionOrdersWrite, domain.PermissionOrdersDelete,
		domain.PermissionPOSSell,
		domain.PermissionProductionRead, domain.PermissionProductionWrite,
		domain.PermissionRecipesRead,
		domain.PermissionDeliveriesRead, domain.PermissionDeliveriesWrite, domain.PermissionDeliveriesDelete,
		domain.PermissionPurchasingRead, domain.PermissionPurchasingWrite,
		domain.PermissionNotificationsRead,
		domain.PermissionReportsView, domain.PermissionReportsExport,
	},
	domain.RoleProductionManager: {
		domain.PermissionProductsRead,
		domain.PermissionWarehousesRead,
		domain.PermissionInventoryRead, domain.PermissionInventoryWrite,
		domain.PermissionOrdersRead,
		domain.PermissionProductionRead, domain.PermissionProductionWrite, domain.PermissionProductionDelete,
		domain.PermissionRecipesRead, domain.PermissionRecipesWrite, domain.PermissionRecipesDelete,
		domain.PermissionNotificationsRead,
		domain.PermissionReportsView,
	},
	domain.RoleInventoryManager: {
		domain.PermissionProductsRead, domain.PermissionProductsWrite,
		domain.PermissionWarehousesRead, domain.PermissionWarehousesWrite,
		domain.PermissionSuppliersRead, domain.PermissionSuppliersWrite,
		domain.PermissionInventoryRead, domain.PermissionInventoryWrite, domain.PermissionInventoryDelete, domain.PermissionInventoryTransfer,
		domain.PermissionPurchasingRead, domain.PermissionPurchasingWrite, domain.PermissionPurchasingDelete,
		domain.PermissionRecipesRead,
		domain.PermissionNotificationsRead,
		domain.PermissionReportsView,
	},
	domain.RoleSalesStaff: {
		domain.PermissionCustomersRead, domain.PermissionCustomersWrite,
		domain.PermissionProductsRead,
		domain.PermissionInventoryRead,
		domain.PermissionOrdersRead, domain.PermissionOrdersWrite,
		domain.PermissionPOSSell,
		domain.PermissionDeliveriesRead, domain.PermissionDeliveriesWrite,
		domain.PermissionNotificationsRead,
	},
	domain.RoleCashier: {
		domain.PermissionCustomersRead,
		domain.PermissionProductsRead,
		domain.PermissionInventoryRead,
		domain.PermissionOrdersRead,
		domain.PermissionPOSSell,
		domain.PermissionNotificationsRead,
	},
	domain.RoleDeliveryStaff: {
		domain.PermissionCustomersRead,
		domain.PermissionOrdersRead,
		domain.PermissionDeliveriesRead, domain.PermissionDeliveriesWrite,
		domain.PermissionNotificationsRead,
	},
}

// Allowed reports whether role grants permission
func Allowed(role domain.UserRole, permission domain.Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
