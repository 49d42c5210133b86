package model

// Privilege codes checked by the HTTP layer
const (
	PrivUserView      = "user:view"
	PrivUserManage    = "user:manage"
	PrivProductView   = "product:view"
	PrivProductManage = "product:manage"
	PrivCustomerView  = "customer:view"
	PrivCustomerEdit  = "customer:manage"
	PrivSupplierView  = "supplier:view"
	PrivSupplierEdit  = "supplier:manage"
	PrivSaleView      = "sale:view"
	PrivSaleCreate    = "sale:create"
	PrivSaleDelete    = "sale:delete"
	PrivPurchaseView  = "purchase:view"
	PrivPurchaseEdit  = "purchase:manage"
	PrivCartUse       = "cart:use"
	PrivReportView    = "report:view"
)

// AllPrivileges is what an ADMIN holds
var AllPrivileges = []string{
	PrivUserView, PrivUserManage,
	PrivProductView, PrivProductManage,
	PrivCustomerView, PrivCustomerEdit,
	PrivSupplierView, PrivSupplierEdit,
	PrivSaleView, PrivSaleCreate, PrivSaleDelete,
	PrivPurchaseView, PrivPurchaseEdit,
	PrivCartUse, PrivReportView,
}

// Suppliers, purchases and users stay with the ADMIN
var sellerPrivileges = []string{
	PrivProductView, PrivProductManage,
	PrivCustomerView, PrivCustomerEdit,
	PrivSaleView, PrivSaleCreate, PrivSaleDelete,
	PrivCartUse, PrivReportView,
}

// PrivilegesFor returns the static privilege set of a role
func PrivilegesFor(role Role) []string {
	switch role {
	case RoleAdmin:
		return append([]string(nil), AllPrivileges...)
	case RoleSeller:
		return append([]string(nil), sellerPrivileges...)
	}
	return nil
}
