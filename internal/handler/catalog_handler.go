package handler

import (
	"bodega-pos/internal/model"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GET /api/v1/products?q=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.Query("q"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(products)
}

// GET /api/v1/products/low-stock
func (h *ProductHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID, _ := operatorID(c)
	if err := h.service.CreateProduct(c.UserContext(), &product, userID); err != nil {
		return sendError(c, err, 400)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct ignores any stock in the body.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID, _ := operatorID(c)
	updated, err := h.service.UpdateProduct(c.UserContext(), id, &product, userID)
	if err != nil {
		return sendError(c, err, 400)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// partyService is the shape shared by the customer and supplier services.
type partyService[T any] interface {
	Create(req *T, userID string) error
	Update(id uint, req *T, userID string) (*T, error)
	Delete(id uint) error
	Get(id uint) (*T, error)
	List() ([]T, error)
	Search(term string) ([]T, error)
}

// PartyHandler serves customers or suppliers.
type PartyHandler[T any] struct {
	service partyService[T]
	label   string
}

func NewCustomerHandler(s service.CustomerService) *PartyHandler[model.Customer] {
	return &PartyHandler[model.Customer]{service: s, label: "Customer"}
}

func NewSupplierHandler(s service.SupplierService) *PartyHandler[model.Supplier] {
	return &PartyHandler[model.Supplier]{service: s, label: "Supplier"}
}

func (h *PartyHandler[T]) List(c *fiber.Ctx) error {
	parties, err := h.service.Search(c.Query("q"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch " + h.label + " list"})
	}
	return c.JSON(parties)
}

func (h *PartyHandler[T]) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid " + h.label + " ID"})
	}
	party, err := h.service.Get(id)
	if err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(party)
}

func (h *PartyHandler[T]) Create(c *fiber.Ctx) error {
	var party T
	if err := c.BodyParser(&party); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	userID, _ := operatorID(c)
	if err := h.service.Create(&party, userID); err != nil {
		return sendError(c, err, 400)
	}
	return c.Status(201).JSON(fiber.Map{"message": h.label + " created", "data": party})
}

func (h *PartyHandler[T]) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid " + h.label + " ID"})
	}
	var party T
	if err := c.BodyParser(&party); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	userID, _ := operatorID(c)
	updated, err := h.service.Update(id, &party, userID)
	if err != nil {
		return sendError(c, err, 400)
	}
	return c.JSON(fiber.Map{"message": h.label + " updated", "data": updated})
}

func (h *PartyHandler[T]) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid " + h.label + " ID"})
	}
	if err := h.service.Delete(id); err != nil {
		return sendError(c, err, 500)
	}
	return c.JSON(fiber.Map{"message": h.label + " deleted"})
}
