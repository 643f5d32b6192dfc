package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/handler"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/database"
	"go-pos-inventory/pkg/jwt"
	applog "go-pos-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	zlog := applog.New(cfg.Env)
	defer zlog.Sync()

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			zlog.Fatal("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "your-super-secret-key-change-in-production"
		zlog.Warn("JWT_SECRET not set, using development secret")
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL, cfg.DBTimeZone)
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Repositories
	ingredientRepo := repository.NewIngredientRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	recipeRepo := repository.NewRecipeRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 4. Seed default privileges, roles, and admin user
	if err := service.SeedDefaults(privilegeRepo, roleRepo, userRepo, cfg.SeedAdminEmail, cfg.SeedAdminPassword, zlog); err != nil {
		zlog.Warn("seeding failed", zap.Error(err))
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	// 6. Services
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.AppName)
	ledger := service.NewStockLedger(ingredientRepo, ledgerRepo, db, wsHub, zlog.Named("ledger"))
	recipes := service.NewRecipeRegistry(recipeRepo, productRepo, ingredientRepo, db)
	availability := service.NewAvailabilityService(productRepo, cfg.LowStockThreshold)
	invService := service.NewInventoryService(ingredientRepo, ledger, db, wsHub, zlog.Named("inventory"))
	productService := service.NewProductService(productRepo, categoryRepo, recipes, availability, db, wsHub, zlog.Named("product"))
	categoryService := service.NewCategoryService(categoryRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, ingredientRepo, ledger, db, wsHub, zlog.Named("sale"))
	reportService := service.NewReportService(reportRepo, productRepo, ingredientRepo, availability)
	authService := service.NewAuthService(userRepo, tokens, wsHub, zlog.Named("auth"))
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	router := &handler.Router{
		Auth:        handler.NewAuthHandler(authService, zlog),
		Ingredients: handler.NewIngredientHandler(invService, zlog),
		Products:    handler.NewProductHandler(productService, recipes, availability, zlog),
		Categories:  handler.NewCategoryHandler(categoryService, zlog),
		Sales:       handler.NewSaleHandler(saleService, zlog),
		Reports:     handler.NewReportHandler(reportService, zlog),
		Users:       handler.NewUserHandler(userService, zlog),
		Roles:       handler.NewRoleHandler(roleRepo, privilegeRepo),
		RequireAuth: middleware.RequireAuth(userRepo, tokens),
		Hub:         wsHub,
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	router.Register(app)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()

	zlog.Info("server exited")
}
