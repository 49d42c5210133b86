package handler

import (
	"strconv"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}

// GetSummary returns total, count and average of a kind
// GET /api/v1/reports/summary/:kind
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	kind, ok := ledger.ParseKind(c.Params("kind"))
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown transaction kind"})
	}
	return sendResult(c, h.service.Summary(c.UserContext(), kind), 200)
}

// GetPaymentSplit returns sales totals by payment method
// GET /api/v1/reports/payments
func (h *DashboardHandler) GetPaymentSplit(c *fiber.Ctx) error {
	return sendResult(c, h.service.PaymentSplit(c.UserContext()), 200)
}

// GetToday returns the sales of the current business day
// GET /api/v1/sales/today
func (h *DashboardHandler) GetToday(c *fiber.Ctx) error {
	return sendResult(c, h.service.Today(c.UserContext()), 200)
}
