package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bodega-pos/internal/cart"
	"bodega-pos/internal/config"
	"bodega-pos/internal/events"
	"bodega-pos/internal/handler"
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/middleware"
	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/internal/service"
	"bodega-pos/internal/ws"
	"bodega-pos/pkg/database"
	"bodega-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL, cfg.DBLogLevel)
	if err := db.AutoMigrate(model.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repository.NewUserRepo(db)

	// 3. Seed the first ADMIN
	seedAdmin(userRepo, cfg)

	// 4. Setup WebSocket Hub and event fan-out
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	publisher := events.Multi{events.NewHubPublisher(wsHub)}
	var cartStore cart.Store = cart.NewMemoryStore(cfg.CartTTL)

	rdb, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Printf("Warning: redis unavailable, using in-process carts: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		publisher = append(publisher, events.NewRedisPublisher(rdb))
		cartStore = cart.NewRedisStore(rdb, cfg.CartTTL)
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)

	sales := ledger.New(ledger.KindSale, repository.NewLedgerRepo(db, ledger.KindSale), stockRepo, cfg.LedgerOptions()...)
	purchases := ledger.New(ledger.KindPurchase, repository.NewLedgerRepo(db, ledger.KindPurchase), stockRepo, cfg.LedgerOptions()...)
	log.Printf("Ledger: stock mode %s, stock check %t, transactional %t", cfg.StockMode, cfg.StockCheck, cfg.Transactional)

	transactions := service.NewTransactionService(sales, purchases, publisher)
	services := handler.Services{
		Auth:         service.NewAuthService(userRepo, jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL), publisher),
		Users:        service.NewUserService(userRepo),
		Products:     service.NewProductService(productRepo, publisher, cfg.LowStockThreshold),
		Customers:    service.NewCustomerService(repository.NewCustomerRepo(db)),
		Suppliers:    service.NewSupplierService(repository.NewSupplierRepo(db)),
		Transactions: transactions,
		Carts:        service.NewCartService(cartStore, productRepo, transactions),
		Dashboard:    service.NewDashboardService(repository.NewDashboardRepo(db), transactions, cfg.LowStockThreshold, cfg.Location),
	}

	loginLimit, err := middleware.RateLimit(cfg.LoginRate)
	if err != nil {
		log.Fatalf("Invalid LOGIN_RATE %q: %v", cfg.LoginRate, err)
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Bodega POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.RegisterRoutes(app.Group("/api/v1"), services, loginLimit)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the first ADMIN when none exists.
func seedAdmin(userRepo repository.UserRepository, cfg *config.Config) {
	admins, err := userRepo.CountByRole(model.RoleAdmin)
	if err != nil {
		log.Printf("Warning: Failed to count admins: %v", err)
		return
	}
	if admins > 0 {
		return
	}

	email, password := cfg.SeedAdminEmail, cfg.SeedAdminPassword
	if email == "" || password == "" {
		email, password = "admin@bodega.pe", "admin123"
		log.Println("Warning: SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, using defaults")
	}

	admin := &model.UserProfile{
		Email:     email,
		FirstName: "Administrador",
		Role:      model.RoleAdmin,
		IsActive:  true,
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s", email)
}
