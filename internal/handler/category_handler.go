package handler

import (
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service service.CategoryService
	log     *zap.Logger
}

func NewCategoryHandler(s service.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: s, log: log}
}

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}
	category, err := h.service.GetCategory(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if !bindBody(c, &req) {
		return nil
	}
	category, err := h.service.CreateCategory(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}
	var req service.CategoryRequest
	if !bindBody(c, &req) {
		return nil
	}
	category, err := h.service.UpdateCategory(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}
	if err := h.service.DeleteCategory(id, getUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
