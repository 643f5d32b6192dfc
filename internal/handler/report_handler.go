package handler

import (
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	service service.ReportService
	log     *zap.Logger
}

func NewReportHandler(s service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{service: s, log: log}
}

// GetDashboardStats returns overview statistics
// Query params: days (default 30)
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(queryDays(c, 30))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *ReportHandler) GetSalesOverTime(c *fiber.Ctx) error {
	days := queryDays(c, 30)
	data, err := h.service.GetSalesOverTime(days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"period": days, "data": data})
}

func (h *ReportHandler) GetSalesPerProduct(c *fiber.Ctx) error {
	days := queryDays(c, 30)
	data, err := h.service.GetSalesPerProduct(days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"period": days, "data": data})
}

func (h *ReportHandler) GetPaymentMethods(c *fiber.Ctx) error {
	days := queryDays(c, 30)
	data, err := h.service.GetSalesByPaymentMethod(days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"period": days, "data": data})
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	days := queryDays(c, 7)
	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"period": days, "data": data})
}
