package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"estampa-fina/internal/config"
	"estampa-fina/internal/handler"
	"estampa-fina/internal/middleware"
	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/postal"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/service"
	"estampa-fina/internal/storage"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/database"
	"estampa-fina/pkg/jwt"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Setup Database
	db := database.ConnectDB(&cfg.DB, cfg.Log.SQLLevel)
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Seed bootstrap administrator
	seedAdmin(db, &cfg.Seed)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	store, err := newStorage(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	clientRepo := repository.NewClientRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	quoteRepo := repository.NewQuoteRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	activityRepo := repository.NewActivityLogRepo(db)

	issuer := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	lookup := postal.NewViaCEPClient(cfg.Postal.BaseURL, cfg.Postal.Timeout)

	activityService := service.NewActivityService(activityRepo)
	authService := service.NewAuthService(userRepo, issuer, wsHub, cfg.JWT.IdleTimeout)
	userService := service.NewUserService(userRepo, activityService, wsHub)
	settingsService := service.NewSettingsService(settingsRepo, store, activityService, wsHub)
	productService := service.NewProductService(productRepo, store, activityService, wsHub)
	categoryService := service.NewCategoryService(categoryRepo, activityService)
	clientService := service.NewClientService(clientRepo, orderRepo, lookup, activityService)
	saleService := service.NewSaleService(orderRepo, clientRepo, productRepo, activityService, wsHub)
	quoteService := service.NewQuoteService(quoteRepo, clientRepo, productRepo, settingsService, activityService)
	notificationService := service.NewNotificationService(notificationRepo)
	alertService := service.NewAlertService(productRepo, orderRepo, notificationRepo, settingsService, wsHub)
	dashService := service.NewDashboardService(orderRepo, userRepo, productRepo)
	reportService := service.NewReportService(orderRepo, productRepo)
	searchService := service.NewSearchService(productRepo, userRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler()
	invHandler := handler.NewInventoryHandler(productService, categoryService)
	clientHandler := handler.NewClientHandler(clientService)
	saleHandler := handler.NewSaleHandler(saleService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	notificationHandler := handler.NewNotificationHandler(notificationService, alertService)
	dashHandler := handler.NewDashboardHandler(dashService)
	reportHandler := handler.NewReportHandler(reportService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	searchHandler := handler.NewSearchHandler(searchService)
	activityHandler := handler.NewActivityHandler(activityService)
	wsHandler := handler.NewWSHandler(wsHub)

	go alertService.Run(ctx, cfg.Alerts.ScanInterval)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if cfg.Storage.Driver == "local" {
		app.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 7. Routes
	api := app.Group("/api/v1")
	auth := middleware.RequireAuth(authService)

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	authGroup.Get("/me", auth, authHandler.Me)
	authGroup.Post("/heartbeat", auth, authHandler.Heartbeat)
	authGroup.Post("/logout", auth, authHandler.Logout)
	authGroup.Post("/change-password", auth, authHandler.ChangePassword)
	authGroup.Put("/profile", auth, authHandler.UpdateProfile)

	protected := api.Group("", auth)
	can := middleware.RequireCapability

	// Dashboard & reports
	protected.Get("/dashboard/stats", can(permission.ViewSales), dashHandler.GetDashboardStats)
	protected.Get("/reports", can(permission.ViewReports), reportHandler.GetReport)
	protected.Get("/reports/export/csv", can(permission.ViewReports), reportHandler.ExportCSV)
	protected.Get("/reports/export/xlsx", can(permission.ViewReports), reportHandler.ExportXLSX)

	// Users & roles
	protected.Get("/users", can(permission.ViewUsers), userHandler.GetAllUsers)
	protected.Get("/users/:id", can(permission.ViewUsers), userHandler.GetUserByID)
	protected.Post("/users", can(permission.CreateUser), userHandler.CreateUser)
	protected.Put("/users/:id", can(permission.EditUser), userHandler.UpdateUser)
	protected.Put("/users/:id/permissions", can(permission.EditUserPermissions), userHandler.UpdatePermissions)
	protected.Put("/users/:id/active", can(permission.ToggleUserActive), userHandler.SetActive)
	protected.Post("/users/:id/reset-password", can(permission.EditUser), userHandler.ResetPassword)
	protected.Delete("/users/:id", can(permission.DeleteUser), userHandler.DeleteUser)
	protected.Get("/roles", can(permission.ViewUsers), roleHandler.GetRoles)
	protected.Get("/roles/capabilities", can(permission.ViewUsers), roleHandler.GetCapabilities)

	// Products & categories
	protected.Get("/products", can(permission.ViewProducts), invHandler.GetProducts)
	protected.Get("/products/:id", can(permission.ViewProducts), invHandler.GetProduct)
	protected.Post("/products", can(permission.CreateProduct), invHandler.CreateProduct)
	protected.Put("/products/:id", can(permission.EditProduct), invHandler.UpdateProduct)
	protected.Delete("/products/:id", can(permission.DeleteProduct), invHandler.DeleteProduct)
	protected.Post("/products/:id/image", can(permission.EditProduct), invHandler.UploadImage)
	protected.Get("/categories", can(permission.ViewCategories), invHandler.GetCategories)
	protected.Post("/categories", can(permission.CreateCategory), invHandler.CreateCategory)
	protected.Put("/categories/:id", can(permission.EditCategory), invHandler.UpdateCategory)
	protected.Delete("/categories/:id", can(permission.DeleteCategory), invHandler.DeleteCategory)

	// Clients
	protected.Get("/clients", can(permission.ViewClients), clientHandler.GetClients)
	protected.Get("/clients/:id", can(permission.ViewClients), clientHandler.GetClient)
	protected.Get("/clients/:id/orders", can(permission.ViewClients), clientHandler.GetHistory)
	protected.Post("/clients", can(permission.CreateClient), clientHandler.CreateClient)
	protected.Put("/clients/:id", can(permission.EditClient), clientHandler.UpdateClient)
	protected.Delete("/clients/:id", can(permission.DeleteClient), clientHandler.DeleteClient)
	protected.Get("/postal-codes/:cep",
		middleware.RequireAnyCapability(permission.CreateClient, permission.EditClient),
		clientHandler.LookupPostalCode)

	// Sales
	protected.Get("/sales", can(permission.ViewSales), saleHandler.GetSales)
	protected.Get("/sales/:id", can(permission.ViewSales), saleHandler.GetSale)
	protected.Post("/sales", can(permission.CreateSale), saleHandler.CreateSale)
	protected.Post("/sales/walk-in", can(permission.CreateSale), saleHandler.CreateWalkInSale)
	protected.Put("/sales/:id", can(permission.CreateSale), saleHandler.UpdateSale)
	protected.Put("/sales/:id/status", can(permission.EditSaleStatus), saleHandler.UpdateStatus)
	protected.Get("/me/orders", middleware.RequireRole(permission.Customer), saleHandler.GetMyOrders)

	// Quotes
	protected.Get("/quotes", can(permission.ViewQuotes), quoteHandler.GetQuotes)
	protected.Get("/quotes/:id", can(permission.ViewQuotes), quoteHandler.GetQuote)
	protected.Get("/quotes/:id/pdf", can(permission.ViewQuotes), quoteHandler.DownloadPDF)
	protected.Post("/quotes", can(permission.CreateQuote), quoteHandler.CreateQuote)
	protected.Put("/quotes/:id", can(permission.EditQuote), quoteHandler.UpdateQuote)
	protected.Delete("/quotes/:id", can(permission.DeleteQuote), quoteHandler.DeleteQuote)

	// Notifications & alerts
	protected.Get("/notifications", can(permission.ViewAlerts), notificationHandler.GetFeed)
	protected.Put("/notifications/read-all", can(permission.ViewAlerts), notificationHandler.MarkAllRead)
	protected.Put("/notifications/:id/read", can(permission.ViewAlerts), notificationHandler.MarkRead)
	protected.Get("/alerts", can(permission.ViewAlerts), notificationHandler.GetAlerts)

	// Settings (readable by every signed-in user for branding)
	protected.Get("/settings", settingsHandler.GetSettings)
	protected.Put("/settings", can(permission.EditSettings), settingsHandler.UpdateSettings)
	protected.Post("/settings/:kind", can(permission.EditSettings), settingsHandler.UploadAsset)

	protected.Get("/search", searchHandler.Search)
	protected.Get("/activity", middleware.RequireRole(permission.Administrator, permission.Manager), activityHandler.GetActivity)

	// WebSocket Route
	app.Use("/ws", wsHandler.Upgrade, auth)
	app.Get("/ws", wsHandler.Stream())

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func newStorage(ctx context.Context, cfg *config.StorageConfig) (storage.ObjectStorage, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3Storage(ctx, &cfg.S3, cfg.PublicBaseURL)
	}
	return storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
}

// seedAdmin creates the bootstrap administrator on an empty user table.
func seedAdmin(db *gorm.DB, seed *config.SeedConfig) {
	userRepo := repository.NewUserRepo(db)

	_, err := userRepo.FindByEmail(seed.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Warning: Failed to look up admin user: %v", err)
		return
	}

	admin := &model.User{
		Email:  seed.AdminEmail,
		Name:   seed.AdminName,
		Role:   permission.Administrator,
		Active: true,
	}
	admin.ResetPermissions()
	if err := admin.SetPassword(seed.AdminPassword); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s", seed.AdminEmail)
}
