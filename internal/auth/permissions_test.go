package auth_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/auth"
	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAllowed_AdminHasEverything(t *testing.T) {
	for _, p := range domain.AllPermissions {
		assert.True(t, auth.Allowed(domain.RoleAdmin, p), "admin should hold %s", p)
	}
}

func TestAllowed_RoleTable(t *testing.T) {
	tests := []struct {
		role       domain.UserRole
		permission domain.Permission
		allowed    bool
	}{
		{domain.RoleCashier, domain.PermissionPOSSell, true},
		{domain.RoleCashier, domain.PermissionInventoryWrite, false},
		{domain.RoleCashier, domain.PermissionReportsView, false},
		{domain.RoleDeliveryStaff, domain.PermissionDeliveriesWrite, true},
		{domain.RoleDeliveryStaff, domain.PermissionProductsRead, false},
		{domain.RoleProductionManager, domain.PermissionRecipesWrite, true},
		{domain.RoleProductionManager, domain.PermissionPurchasingWrite, false},
		{domain.RoleInventoryManager, domain.PermissionInventoryTransfer, true},
		{domain.RoleSalesStaff, domain.PermissionOrdersDelete, false},
		{domain.RoleStoreManager, domain.PermissionReportsExport, true},
		{domain.RoleStoreManager, domain.PermissionUsersWrite, false},
		{domain.UserRole("BAKER"), domain.PermissionProductsRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.permission), func(t *testing.T) {
			assert.Equal(t, tt.allowed, auth.Allowed(tt.role, tt.permission))
		})
	}
}

func TestUserContext_ActorID(t *testing.T) {
	system := &auth.UserContext{UserID: auth.SystemUserID, Name: "System", System: true}
	assert.Nil(t, system.ActorID())

	user := testUser(domain.RoleCashier)
	ctxUser := &auth.UserContext{UserID: user.ID, Email: user.Email}
	assert.Equal(t, user.ID, *ctxUser.ActorID())
	assert.Equal(t, user.Email, ctxUser.ActorName())
}
