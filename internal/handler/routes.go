package handler

import (
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/middleware"
	"bodega-pos/internal/model"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services is everything the HTTP layer talks to.
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Products     service.ProductService
	Customers    service.CustomerService
	Suppliers    service.SupplierService
	Transactions service.TransactionService
	Carts        service.CartService
	Dashboard    service.DashboardService
}

// RegisterRoutes mounts the /api/v1 surface on api. loginLimit guards the
// password endpoints and may be nil.
func RegisterRoutes(api fiber.Router, s Services, loginLimit fiber.Handler) {
	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Users)
	productHandler := NewProductHandler(s.Products)
	customerHandler := NewCustomerHandler(s.Customers)
	supplierHandler := NewSupplierHandler(s.Suppliers)
	saleHandler := NewTransactionHandler(s.Transactions, ledger.KindSale)
	purchaseHandler := NewTransactionHandler(s.Transactions, ledger.KindPurchase)
	cartHandler := NewCartHandler(s.Carts)
	dashHandler := NewDashboardHandler(s.Dashboard)

	if loginLimit == nil {
		loginLimit = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireAuth := middleware.RequireAuth(s.Auth)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", loginLimit, authHandler.Login)
	auth.Post("/reset-password", loginLimit, authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	auth.Get("/me", requireAuth, authHandler.Me)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Dashboard and reports
	protected.Get("/dashboard/stats", can(model.PrivReportView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivReportView), dashHandler.GetStockMovement)
	protected.Get("/reports/summary/:kind", can(model.PrivReportView), dashHandler.GetSummary)
	protected.Get("/reports/payments", can(model.PrivReportView), dashHandler.GetPaymentSplit)

	// Products
	protected.Get("/products", can(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/low-stock", can(model.PrivProductView), productHandler.GetLowStock)
	protected.Get("/products/:id", can(model.PrivProductView), productHandler.GetProduct)
	protected.Post("/products", can(model.PrivProductManage), productHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PrivProductManage), productHandler.UpdateProduct)
	protected.Delete("/products/:id", can(model.PrivProductManage), productHandler.DeleteProduct)

	// Customers and suppliers
	protected.Get("/customers", can(model.PrivCustomerView), customerHandler.List)
	protected.Get("/customers/:id", can(model.PrivCustomerView), customerHandler.Get)
	protected.Post("/customers", can(model.PrivCustomerEdit), customerHandler.Create)
	protected.Put("/customers/:id", can(model.PrivCustomerEdit), customerHandler.Update)
	protected.Delete("/customers/:id", can(model.PrivCustomerEdit), customerHandler.Delete)

	protected.Get("/suppliers", can(model.PrivSupplierView), supplierHandler.List)
	protected.Get("/suppliers/:id", can(model.PrivSupplierView), supplierHandler.Get)
	protected.Post("/suppliers", can(model.PrivSupplierEdit), supplierHandler.Create)
	protected.Put("/suppliers/:id", can(model.PrivSupplierEdit), supplierHandler.Update)
	protected.Delete("/suppliers/:id", can(model.PrivSupplierEdit), supplierHandler.Delete)

	// Sales
	protected.Get("/sales", can(model.PrivSaleView), saleHandler.List)
	protected.Get("/sales/today", can(model.PrivSaleView), dashHandler.GetToday)
	protected.Get("/sales/search", can(model.PrivSaleView), saleHandler.Search)
	protected.Get("/sales/:id", can(model.PrivSaleView), saleHandler.Get)
	protected.Post("/sales", can(model.PrivSaleCreate), saleHandler.Create)
	protected.Delete("/sales/:id", can(model.PrivSaleDelete), saleHandler.Delete)

	// Purchases
	protected.Get("/purchases", can(model.PrivPurchaseView), purchaseHandler.List)
	protected.Get("/purchases/search", can(model.PrivPurchaseView), purchaseHandler.Search)
	protected.Get("/purchases/:id", can(model.PrivPurchaseView), purchaseHandler.Get)
	protected.Post("/purchases", can(model.PrivPurchaseEdit), purchaseHandler.Create)
	protected.Delete("/purchases/:id", can(model.PrivPurchaseEdit), purchaseHandler.Delete)

	// Carts
	carts := protected.Group("/carts/:kind", can(model.PrivCartUse))
	carts.Get("", cartHandler.Get)
	carts.Delete("", cartHandler.Clear)
	carts.Post("/items", cartHandler.AddItem)
	carts.Put("/items/:productId", cartHandler.SetQuantity)
	carts.Delete("/items/:productId", cartHandler.RemoveItem)
	carts.Put("/details", cartHandler.SetDetails)
	carts.Post("/checkout", cartHandler.Checkout)

	// User management
	protected.Get("/users", can(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", can(model.PrivUserManage), userHandler.CreateUser)
	protected.Put("/users/:id", can(model.PrivUserManage), userHandler.UpdateUser)
	protected.Delete("/users/:id", can(model.PrivUserManage), userHandler.DeleteUser)
}
