package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/services"
)

// Broadcaster pushes the current product list to realtime listeners.
// A nil Broadcaster disables realtime updates.
type Broadcaster interface {
	BroadcastProducts()
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
	hub     Broadcaster
}

// NewProductHandler creates a new ProductHandler. hub may be nil.
func NewProductHandler(service *services.ProductService, hub Broadcaster) *ProductHandler {
	return &ProductHandler{
		service: service,
		hub:     hub,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:pid", h.HandleGetProductByID)
	productRoutes.Put("/:pid", h.HandleUpdateProduct)
	productRoutes.Delete("/:pid", h.HandleDeleteProduct)
}

// broadcast notifies realtime listeners after a mutating operation.
func (h *ProductHandler) broadcast() {
	if h.hub != nil {
		h.hub.BroadcastProducts()
	}
}

// HandleGetProducts retrieves the full catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts()
	if err != nil {
		log.Printf("Error getting products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleCreateProduct creates a new product from a loosely-typed payload.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			log.Printf("Error parsing create product body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	created, err := h.service.AddProduct(input)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to create product",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}

	h.broadcast()
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleGetProductByID retrieves a single product by its id.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	pid := c.Params("pid")
	product, err := h.service.GetProductByID(pid)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request",
				"error":   err.Error(),
			})
		}
		log.Printf("Error getting product %s: %v", pid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}
	return c.JSON(product)
}

// HandleUpdateProduct applies a partial update to a product. The id is
// immutable; unknown fields in the payload are ignored.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	pid := c.Params("pid")

	updates := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&updates); err != nil {
			log.Printf("Error parsing update product body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	updated, err := h.service.UpdateProduct(pid, updates)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to update product",
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating product %s: %v", pid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}

	h.broadcast()
	return c.JSON(updated)
}

// HandleDeleteProduct removes a product permanently.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	pid := c.Params("pid")
	removed, err := h.service.DeleteProduct(pid)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to delete product",
				"error":   err.Error(),
			})
		}
		log.Printf("Error deleting product %s: %v", pid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete product",
			"error":   err.Error(),
		})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}

	h.broadcast()
	return c.SendStatus(fiber.StatusNoContent)
}
