package services

import (
	"fmt"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// CartService owns shopping carts. It holds a read-only reference to
// the ProductService for referential validation: every product id added
// to a cart must exist in the catalog at that moment. Products deleted
// later are not cleaned out of carts.
type CartService struct {
	coll     repositories.Collection[models.Cart]
	products *ProductService
}

// NewCartService creates a new CartService.
func NewCartService(coll repositories.Collection[models.Cart], products *ProductService) *CartService {
	return &CartService{
		coll:     coll,
		products: products,
	}
}

// CreateCart validates and persists a new cart, optionally pre-populated
// from the given items. Duplicate product ids are coalesced by summing
// quantities, keeping the order of first appearance. If any referenced
// product does not exist the whole request fails and nothing is
// persisted.
func (s *CartService) CreateCart(items []models.CartItemInput) (*models.Cart, error) {
	totals := make(map[int]float64)
	var order []int

	for _, item := range items {
		pid, err := toNumber(item.Ref())
		if err != nil {
			return nil, validationErrorf("invalid product id in initial products")
		}
		qty, err := toNumber(item.Quantity)
		if err != nil || qty <= 0 {
			return nil, validationErrorf("invalid quantity in initial products")
		}

		product, err := s.products.byID(pid)
		if err != nil {
			return nil, fmt.Errorf("failed to validate product %s: %w", formatID(pid), err)
		}
		if product == nil {
			return nil, validationErrorf("product does not exist: %s", formatID(pid))
		}

		id := product.ID
		if _, seen := totals[id]; !seen {
			order = append(order, id)
		}
		totals[id] += qty
	}

	products := make([]models.CartItem, 0, len(order))
	for _, id := range order {
		products = append(products, models.CartItem{Product: id, Quantity: totals[id]})
	}

	cart := models.Cart{Products: products}
	err := s.coll.Mutate(func(carts []models.Cart) ([]models.Cart, bool, error) {
		cart.ID = repositories.NextID(carts, func(c models.Cart) int { return c.ID })
		return append(carts, cart), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return &cart, nil
}

// GetCartByID returns the cart with the given id, or (nil, nil) if no
// such cart exists. A non-numeric id is a validation error.
func (s *CartService) GetCartByID(id string) (*models.Cart, error) {
	cid, err := toNumber(id)
	if err != nil {
		return nil, validationErrorf("invalid cart id")
	}

	carts, err := s.coll.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range carts {
		if float64(carts[i].ID) == cid {
			c := carts[i]
			return &c, nil
		}
	}
	return nil, nil
}

// AddProductToCart adds quantity units of a product to a cart,
// incrementing the existing pair or appending a new one. quantity may
// be nil, meaning 1. Returns (nil, nil) if the cart does not exist;
// the referenced product must exist.
func (s *CartService) AddProductToCart(cartID, productID string, quantity any) (*models.Cart, error) {
	cid, err := toNumber(cartID)
	if err != nil {
		return nil, validationErrorf("invalid cart id")
	}
	pid, err := toNumber(productID)
	if err != nil {
		return nil, validationErrorf("invalid product id")
	}
	qty := 1.0
	if quantity != nil {
		qty, err = toNumber(quantity)
		if err != nil || qty <= 0 {
			return nil, validationErrorf("invalid quantity")
		}
	}

	product, err := s.products.byID(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to validate product %s: %w", formatID(pid), err)
	}
	if product == nil {
		return nil, validationErrorf("product does not exist")
	}

	var updated *models.Cart
	err = s.coll.Mutate(func(carts []models.Cart) ([]models.Cart, bool, error) {
		idx := -1
		for i := range carts {
			if float64(carts[i].ID) == cid {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, false, nil
		}

		cart := carts[idx]
		found := false
		for i := range cart.Products {
			if cart.Products[i].Product == product.ID {
				cart.Products[i].Quantity += qty
				found = true
				break
			}
		}
		if !found {
			cart.Products = append(cart.Products, models.CartItem{Product: product.ID, Quantity: qty})
		}

		carts[idx] = cart
		updated = &cart
		return carts, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add product to cart: %w", err)
	}

	return updated, nil
}
