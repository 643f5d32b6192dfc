package handler

import (
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Router groups the handlers mounted under /api/v1
type Router struct {
	Auth        *AuthHandler
	Ingredients *IngredientHandler
	Products    *ProductHandler
	Categories  *CategoryHandler
	Sales       *SaleHandler
	Reports     *ReportHandler
	Users       *UserHandler
	Roles       *RoleHandler

	// RequireAuth guards every route except login, password reset and token validation
	RequireAuth fiber.Handler
	Hub         *ws.Hub
}

func (r *Router) Register(app *fiber.App) {
	api := app.Group("/api/v1")
	priv := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/reset-password", r.Auth.ResetPassword)
	auth.Post("/validate-token", r.Auth.ValidateToken)
	auth.Post("/heartbeat", r.RequireAuth, r.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", r.RequireAuth)

	// Ingredients & stock ledger
	protected.Get("/ingredients", priv(model.PrivIngredientView), r.Ingredients.GetIngredients)
	protected.Get("/ingredients/:id", priv(model.PrivIngredientView), r.Ingredients.GetIngredient)
	protected.Get("/ingredients/:id/stock", priv(model.PrivIngredientView), r.Ingredients.GetStock)
	protected.Get("/ingredients/:id/ledger", priv(model.PrivIngredientView), r.Ingredients.GetLedger)
	protected.Post("/ingredients", priv(model.PrivIngredientCreate), r.Ingredients.CreateIngredient)
	protected.Put("/ingredients/:id", priv(model.PrivIngredientUpdate), r.Ingredients.UpdateIngredient)
	protected.Post("/ingredients/:id/adjust", priv(model.PrivIngredientUpdate), r.Ingredients.AdjustStock)
	protected.Delete("/ingredients/:id", priv(model.PrivIngredientDelete), r.Ingredients.DeleteIngredient)

	// Categories
	protected.Get("/categories", priv(model.PrivCategoryView), r.Categories.GetCategories)
	protected.Get("/categories/:id", priv(model.PrivCategoryView), r.Categories.GetCategory)
	protected.Post("/categories", priv(model.PrivCategoryCreate), r.Categories.CreateCategory)
	protected.Put("/categories/:id", priv(model.PrivCategoryUpdate), r.Categories.UpdateCategory)
	protected.Delete("/categories/:id", priv(model.PrivCategoryDelete), r.Categories.DeleteCategory)

	// Products, recipes & availability
	protected.Get("/products", priv(model.PrivProductView), r.Products.GetProducts)
	protected.Get("/products/:id", priv(model.PrivProductView), r.Products.GetProduct)
	protected.Get("/products/:id/recipe", priv(model.PrivProductView), r.Products.GetRecipe)
	protected.Get("/products/:id/availability", priv(model.PrivProductView), r.Products.GetAvailability)
	protected.Post("/products", priv(model.PrivProductCreate), r.Products.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), r.Products.UpdateProduct)
	protected.Put("/products/:id/recipe", priv(model.PrivProductUpdate), r.Products.SetRecipe)
	protected.Delete("/products/:id", priv(model.PrivProductDelete), r.Products.DeleteProduct)
	protected.Get("/pos/catalog", priv(model.PrivSaleCreate), r.Products.GetCatalog)

	// Sales
	protected.Post("/sales", priv(model.PrivSaleCreate), r.Sales.CreateSale)
	protected.Get("/sales", priv(model.PrivSaleView), r.Sales.GetSales)
	protected.Get("/sales/stats", priv(model.PrivSaleView), r.Sales.GetStats)
	protected.Get("/sales/:id", priv(model.PrivSaleView), r.Sales.GetSale)
	protected.Put("/sales/:id/status", priv(model.PrivSaleUpdateStatus), r.Sales.UpdateStatus)

	// Reports
	reports := protected.Group("/reports", priv(model.PrivReportView))
	reports.Get("/dashboard", r.Reports.GetDashboardStats)
	reports.Get("/sales-over-time", r.Reports.GetSalesOverTime)
	reports.Get("/sales-per-product", r.Reports.GetSalesPerProduct)
	reports.Get("/payment-methods", r.Reports.GetPaymentMethods)
	reports.Get("/stock-movement", r.Reports.GetStockMovement)

	// Employees
	protected.Get("/users", priv(model.PrivUserView), r.Users.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), r.Users.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), r.Users.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), r.Users.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), r.Users.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdatePrivilege), r.Users.UpdateUserPrivileges)
	userAdmin := middleware.RequireAnyPrivilege(model.PrivUserView, model.PrivUserUpdatePrivilege)
	protected.Get("/roles", userAdmin, r.Roles.GetRoles)
	protected.Get("/privileges", userAdmin, r.Roles.GetPrivileges)

	if r.Hub == nil {
		return
	}

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(r.Hub.Serve))
}
