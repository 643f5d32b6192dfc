package handler

import (
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products     service.ProductService
	recipes      service.RecipeRegistry
	availability service.AvailabilityService
	log          *zap.Logger
}

func NewProductHandler(products service.ProductService, recipes service.RecipeRegistry, availability service.AvailabilityService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, recipes: recipes, availability: availability, log: log}
}

func productFilter(c *fiber.Ctx) (repository.ProductFilter, bool) {
	filter := repository.ProductFilter{Search: c.Query("search")}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
			return filter, false
		}
		filter.CategoryID = id
	}
	return filter, true
}

// GetProducts lists products with computed availability
// GET /api/v1/products?search=&category_id=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter, ok := productFilter(c)
	if !ok {
		return nil
	}
	products, err := h.products.ListProducts(filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

// GetCatalog lists what the POS screen can sell
// GET /api/v1/pos/catalog
func (h *ProductHandler) GetCatalog(c *fiber.Ctx) error {
	filter, ok := productFilter(c)
	if !ok {
		return nil
	}
	products, err := h.products.Catalog(filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	product, err := h.products.GetProduct(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// CreateProduct creates a product together with its recipe
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if !bindBody(c, &req) {
		return nil
	}
	product, err := h.products.CreateProduct(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	var req service.ProductRequest
	if !bindBody(c, &req) {
		return nil
	}
	product, err := h.products.UpdateProduct(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	if err := h.products.DeleteProduct(id, getUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GetRecipe
// GET /api/v1/products/:id/recipe
func (h *ProductHandler) GetRecipe(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	recipe, err := h.recipes.GetRecipe(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(recipe)
}

// SetRecipe replaces the whole recipe
// PUT /api/v1/products/:id/recipe
func (h *ProductHandler) SetRecipe(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	var req struct {
		Recipe []service.RecipeEntryInput `json:"recipe"`
	}
	if !bindBody(c, &req) {
		return nil
	}
	recipe, err := h.recipes.SetRecipe(id, req.Recipe)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe updated", "data": recipe})
}

// GetAvailability
// GET /api/v1/products/:id/availability
func (h *ProductHandler) GetAvailability(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	units, err := h.availability.ComputeAvailableStock(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"product_id":      id,
		"available_stock": units,
		"stock_status":    service.StockStatus(units, h.availability.LowStockThreshold()),
	})
}
