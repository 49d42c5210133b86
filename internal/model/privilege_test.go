package model

import (
	"slices"
	"testing"
)

func TestPrivilegesFor(t *testing.T) {
	tests := []struct {
		role      Role
		privilege string
		want      bool
	}{
		{RoleAdmin, PrivSupplierView, true},
		{RoleAdmin, PrivPurchaseEdit, true},
		{RoleAdmin, PrivUserManage, true},
		{RoleSeller, PrivProductView, true},
		{RoleSeller, PrivProductManage, true},
		{RoleSeller, PrivCustomerEdit, true},
		{RoleSeller, PrivSaleDelete, true},
		{RoleSeller, PrivCartUse, true},
		{RoleSeller, PrivReportView, true},
		{RoleSeller, PrivSupplierView, false},
		{RoleSeller, PrivSupplierEdit, false},
		{RoleSeller, PrivPurchaseView, false},
		{RoleSeller, PrivUserView, false},
		{Role("GUEST"), PrivSaleView, false},
	}
	for _, tt := range tests {
		if got := slices.Contains(PrivilegesFor(tt.role), tt.privilege); got != tt.want {
			t.Errorf("%s holds %s = %v, want %v", tt.role, tt.privilege, got, tt.want)
		}
	}
}

func TestPrivilegesForReturnsCopy(t *testing.T) {
	got := PrivilegesFor(RoleSeller)
	got[0] = PrivUserManage
	if slices.Contains(PrivilegesFor(RoleSeller), PrivUserManage) {
		t.Fatalf("caller mutated the seller table")
	}
}
