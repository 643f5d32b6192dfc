package handler

import (
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IngredientHandler struct {
	service service.InventoryService
	log     *zap.Logger
}

func NewIngredientHandler(s service.InventoryService, log *zap.Logger) *IngredientHandler {
	return &IngredientHandler{service: s, log: log}
}

// GetIngredients lists ingredients with their stock
// GET /api/v1/ingredients?search=
func (h *IngredientHandler) GetIngredients(c *fiber.Ctx) error {
	ingredients, err := h.service.ListIngredients(c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ingredients)
}

func (h *IngredientHandler) GetIngredient(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	ingredient, err := h.service.GetIngredient(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ingredient)
}

// CreateIngredient
// POST /api/v1/ingredients
func (h *IngredientHandler) CreateIngredient(c *fiber.Ctx) error {
	var req service.CreateIngredientRequest
	if !bindBody(c, &req) {
		return nil
	}

	ingredient, err := h.service.CreateIngredient(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Ingredient created", "data": ingredient})
}

// UpdateIngredient
// PUT /api/v1/ingredients/:id
func (h *IngredientHandler) UpdateIngredient(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	var req service.UpdateIngredientRequest
	if !bindBody(c, &req) {
		return nil
	}

	ingredient, err := h.service.UpdateIngredient(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Ingredient updated", "data": ingredient})
}

// AdjustStock books a signed stock correction
// POST /api/v1/ingredients/:id/adjust
func (h *IngredientHandler) AdjustStock(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	var req service.AdjustStockRequest
	if !bindBody(c, &req) {
		return nil
	}

	entry, err := h.service.AdjustStock(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

func (h *IngredientHandler) DeleteIngredient(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	if err := h.service.DeleteIngredient(id, getUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Ingredient deleted"})
}

// GetStock returns the ledger sum of an ingredient
// GET /api/v1/ingredients/:id/stock
func (h *IngredientHandler) GetStock(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	stock, err := h.service.GetStock(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ingredient_id": id, "stock": stock})
}

// GetLedger returns the newest ledger entries of an ingredient
// GET /api/v1/ingredients/:id/ledger?limit=
func (h *IngredientHandler) GetLedger(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return nil
	}
	entries, err := h.service.GetHistory(id, c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entries)
}
