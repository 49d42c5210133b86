package handler

import (
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/middleware"
	"bodega-pos/internal/model"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

type cartItemRequest struct {
	ProductID uint `json:"product_id"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartDetailsRequest struct {
	CounterpartyID *uint               `json:"counterparty_id"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
}

// target resolves the operator and the :kind route parameter. When ok is
// false the error response has already been written.
func (h *CartHandler) target(c *fiber.Ctx) (op string, kind ledger.Kind, ok bool) {
	op, ok = operatorID(c)
	if !ok {
		c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		return "", "", false
	}
	kind, ok = ledger.ParseKind(c.Params("kind"))
	if !ok {
		c.Status(400).JSON(fiber.Map{"error": "Unknown cart kind"})
		return "", "", false
	}
	// purchases need the purchase privilege on top of cart:use
	if kind == ledger.KindPurchase && !middleware.Session(c).Can(model.PrivPurchaseEdit) {
		c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires '" + model.PrivPurchaseEdit + "' privilege"})
		return "", "", false
	}
	return op, kind, true
}

// GET /api/v1/carts/:kind
func (h *CartHandler) Get(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	cart, err := h.service.Get(c.UserContext(), op, kind)
	if err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(cart)
}

// POST /api/v1/carts/:kind/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "product_id is required"})
	}
	cart, err := h.service.AddItem(c.UserContext(), op, kind, req.ProductID)
	if err != nil {
		return sendError(c, err, 400)
	}
	return c.JSON(cart)
}

// PUT /api/v1/carts/:kind/items/:productId
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req cartQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	cart, err := h.service.SetQuantity(c.UserContext(), op, kind, productID, req.Quantity)
	if err != nil {
		return sendError(c, err, 400)
	}
	return c.JSON(cart)
}

// DELETE /api/v1/carts/:kind/items/:productId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	cart, err := h.service.RemoveItem(c.UserContext(), op, kind, productID)
	if err != nil {
		return sendError(c, err, 400)
	}
	return c.JSON(cart)
}

// DELETE /api/v1/carts/:kind
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	cart, err := h.service.Clear(c.UserContext(), op, kind)
	if err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(cart)
}

// PUT /api/v1/carts/:kind/details
func (h *CartHandler) SetDetails(c *fiber.Ctx) error {
	op, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	var req cartDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	cart, err := h.service.SetDetails(c.UserContext(), op, kind, req.CounterpartyID, req.PaymentMethod)
	if err != nil {
		return sendError(c, err, 400)
	}
	return c.JSON(cart)
}

// POST /api/v1/carts/:kind/checkout
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	_, kind, ok := h.target(c)
	if !ok {
		return nil
	}
	return sendResult(c, h.service.Checkout(c.UserContext(), middleware.Session(c), kind), 201)
}
