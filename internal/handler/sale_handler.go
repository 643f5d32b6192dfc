package handler

import (
	"time"

	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SaleHandler struct {
	service service.SaleService
	log     *zap.Logger
}

func NewSaleHandler(s service.SaleService, log *zap.Logger) *SaleHandler {
	return &SaleHandler{service: s, log: log}
}

// CreateSale checks out a cart
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.ProcessSaleRequest
	if !bindBody(c, &req) {
		return nil
	}

	sale, err := h.service.ProcessSale(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// GetSales
// GET /api/v1/sales?status=&search=&cashier_id=&date_from=&date_to=&page=&limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Status: model.SaleStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 15),
	}
	if raw := c.Query("cashier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid cashier ID"})
		}
		filter.CashierID = &id
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "date_from must be YYYY-MM-DD"})
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "date_to must be YYYY-MM-DD"})
		}
		// inclusive of the whole day
		to = to.AddDate(0, 0, 1)
		filter.DateTo = &to
	}

	viewAll := middleware.HasPrivilege(c, model.PrivSaleViewAll)
	page, err := h.service.ListSales(filter, middleware.UserID(c), viewAll)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "sale")
	if !ok {
		return nil
	}
	sale, err := h.service.GetSale(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !middleware.HasPrivilege(c, model.PrivSaleViewAll) &&
		(sale.CashierID == nil || *sale.CashierID != middleware.UserID(c)) {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: not your sale"})
	}
	return c.JSON(sale)
}

// GetStats returns the counters on top of the sales screen
// GET /api/v1/sales/stats
func (h *SaleHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetSaleStats()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

// UpdateStatus
// PUT /api/v1/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "sale")
	if !ok {
		return nil
	}
	var req struct {
		Status model.SaleStatus `json:"status"`
	}
	if !bindBody(c, &req) {
		return nil
	}

	sale, err := h.service.UpdateSaleStatus(id, req.Status, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Status updated", "data": sale})
}
