package handler

import (
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/middleware"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler serves the ledger of one kind, mounted at /sales or /purchases.
type TransactionHandler struct {
	service service.TransactionService
	kind    ledger.Kind
}

func NewTransactionHandler(s service.TransactionService, kind ledger.Kind) *TransactionHandler {
	return &TransactionHandler{service: s, kind: kind}
}

// Create records a transaction for the signed-in operator. Any operator_id in
// the body is replaced by the session's.
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req ledger.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	res := h.service.Create(c.UserContext(), h.kind, middleware.Session(c), req)
	return sendResult(c, res, 201)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	return sendResult(c, h.service.List(c.UserContext(), h.kind), 200)
}

// GET /search?q=
func (h *TransactionHandler) Search(c *fiber.Ctx) error {
	return sendResult(c, h.service.Search(c.UserContext(), h.kind, c.Query("q")), 200)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	return sendResult(c, h.service.Get(c.UserContext(), h.kind, id), 200)
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	return sendResult(c, h.service.Delete(c.UserContext(), h.kind, middleware.Session(c), id), 200)
}
