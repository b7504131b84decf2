package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/models"
	"tienda/internal/services"
)

// CartHandler handles HTTP requests for shopping carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:cid", h.HandleGetCartByID)
	cartRoutes.Post("/:cid/product/:pid", h.HandleAddProductToCart)
}

// HandleCreateCart creates a new cart, optionally pre-populated. The
// body may be a bare array of items or {"products": [...]}.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	var req models.CreateCartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing create cart body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	cart, err := h.service.CreateCart(req.Products)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to create cart",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleGetCartByID lists the products in a cart.
func (h *CartHandler) HandleGetCartByID(c *fiber.Ctx) error {
	cid := c.Params("cid")
	cart, err := h.service.GetCartByID(cid)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request",
				"error":   err.Error(),
			})
		}
		log.Printf("Error getting cart %s: %v", cid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	if cart == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Cart not found",
		})
	}
	return c.JSON(cart.Products)
}

// HandleAddProductToCart adds a product to a cart, incrementing the
// quantity when the pair already exists. The optional body may carry
// {"quantity": n}; the default is 1.
func (h *CartHandler) HandleAddProductToCart(c *fiber.Ctx) error {
	cid := c.Params("cid")
	pid := c.Params("pid")

	var body struct {
		Quantity any `json:"quantity"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			log.Printf("Error parsing add to cart body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	cart, err := h.service.AddProductToCart(cid, pid, body.Quantity)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to add product to cart",
				"error":   err.Error(),
			})
		}
		log.Printf("Error adding product %s to cart %s: %v", pid, cid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add product to cart",
			"error":   err.Error(),
		})
	}
	if cart == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Cart not found",
		})
	}
	return c.JSON(cart)
}
