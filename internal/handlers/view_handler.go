package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/services"
)

// ViewHandler serves the server-rendered pages: the plain product list
// and the live view driven by the websocket hub.
type ViewHandler struct {
	products *services.ProductService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(products *services.ProductService) *ViewHandler {
	return &ViewHandler{
		products: products,
	}
}

// RegisterRoutes registers the view routes with the Fiber app.
func (h *ViewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/realtimeproducts", h.HandleRealtimeProducts)
}

// HandleHome renders the product list.
func (h *ViewHandler) HandleHome(c *fiber.Ctx) error {
	products, err := h.products.GetProducts()
	if err != nil {
		log.Printf("Error rendering home: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load products")
	}
	return c.Render("home", fiber.Map{
		"Title":    "Products",
		"Products": products,
	})
}

// HandleRealtimeProducts renders the live product view; the page keeps
// itself current over the websocket endpoint.
func (h *ViewHandler) HandleRealtimeProducts(c *fiber.Ctx) error {
	return c.Render("realtime", fiber.Map{
		"Title": "Realtime Products",
	})
}
