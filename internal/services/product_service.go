package services

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/pkg/rabbitmq"
)

// ProductService owns the product catalog: it validates and normalizes
// new records, assigns identifiers, and serves reads, updates, and
// deletes over the injected collection. Lookups that find nothing
// return (nil, nil) so callers can map "not found" without error
// matching.
type ProductService struct {
	coll     repositories.Collection[models.Product]
	validate *validator.Validate
	mqClient *rabbitmq.Client // nil disables event publishing
}

// NewProductService creates a new ProductService. mqClient may be nil,
// in which case product events are not published.
func NewProductService(coll repositories.Collection[models.Product], mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		coll:     coll,
		validate: validator.New(),
		mqClient: mqClient,
	}
}

// AddProduct validates and persists a new product from a loosely-typed
// payload. All business fields are required; absent, null, or
// empty-string values reject the request naming the first missing
// field. The new record, including its assigned id, is returned.
func (s *ProductService) AddProduct(input map[string]any) (*models.Product, error) {
	for _, field := range models.ProductFields {
		v, ok := input[field]
		if !ok || v == nil || v == "" {
			return nil, validationErrorf("missing required field: %s", field)
		}
	}

	price, err := toNumber(input["price"])
	if err != nil {
		return nil, validationErrorf("invalid price: %v", err)
	}
	stock, err := toNumber(input["stock"])
	if err != nil {
		return nil, validationErrorf("invalid stock: %v", err)
	}
	status, err := toBoolean(input["status"])
	if err != nil {
		return nil, validationErrorf("invalid status: %v", err)
	}
	thumbnails, err := toStringSlice(input["thumbnails"])
	if err != nil {
		return nil, validationErrorf("invalid thumbnails: %v", err)
	}

	product := models.Product{
		Title:       toText(input["title"]),
		Description: toText(input["description"]),
		Code:        toText(input["code"]),
		Price:       price,
		Status:      status,
		Stock:       stock,
		Category:    toText(input["category"]),
		Thumbnails:  thumbnails,
	}

	if err := s.validate.Struct(product); err != nil {
		return nil, validationErrorf("invalid product: %v", err)
	}

	err = s.coll.Mutate(func(products []models.Product) ([]models.Product, bool, error) {
		product.ID = repositories.NextID(products, func(p models.Product) int { return p.ID })
		return append(products, product), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	s.publishEvent("product.created", product)
	return &product, nil
}

// GetProducts returns the full catalog, insertion order preserved.
func (s *ProductService) GetProducts() ([]models.Product, error) {
	return s.coll.ReadAll()
}

// GetProductByID returns the product with the given id, or (nil, nil)
// if no such product exists. A non-numeric id is a validation error.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	pid, err := toNumber(id)
	if err != nil {
		return nil, validationErrorf("invalid product id")
	}
	return s.byID(pid)
}

// byID looks a product up by its coerced numeric id.
func (s *ProductService) byID(pid float64) (*models.Product, error) {
	products, err := s.coll.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if float64(products[i].ID) == pid {
			p := products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// UpdateProduct applies a partial update: only the whitelisted business
// fields present in the payload are touched, each coerced like in
// AddProduct; the id is immutable and unknown fields are dropped.
// Returns (nil, nil) if the id does not exist.
func (s *ProductService) UpdateProduct(id string, updates map[string]any) (*models.Product, error) {
	pid, err := toNumber(id)
	if err != nil {
		return nil, validationErrorf("invalid product id")
	}

	var updated *models.Product
	err = s.coll.Mutate(func(products []models.Product) ([]models.Product, bool, error) {
		idx := -1
		for i := range products {
			if float64(products[i].ID) == pid {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, false, nil
		}

		product := products[idx]
		if err := applyProductUpdates(&product, updates); err != nil {
			return nil, false, err
		}
		if err := s.validate.Struct(product); err != nil {
			return nil, false, validationErrorf("invalid product: %v", err)
		}

		products[idx] = product
		updated = &product
		return products, true, nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	s.publishEvent("product.updated", *updated)
	return updated, nil
}

// applyProductUpdates merges the whitelisted fields of a loosely-typed
// payload into product, coercing each present value.
func applyProductUpdates(product *models.Product, updates map[string]any) error {
	for _, field := range models.ProductFields {
		v, ok := updates[field]
		if !ok || v == nil {
			continue
		}
		switch field {
		case "title":
			product.Title = toText(v)
		case "description":
			product.Description = toText(v)
		case "code":
			product.Code = toText(v)
		case "category":
			product.Category = toText(v)
		case "price":
			n, err := toNumber(v)
			if err != nil {
				return validationErrorf("invalid price: %v", err)
			}
			product.Price = n
		case "stock":
			n, err := toNumber(v)
			if err != nil {
				return validationErrorf("invalid stock: %v", err)
			}
			product.Stock = n
		case "status":
			b, err := toBoolean(v)
			if err != nil {
				return validationErrorf("invalid status: %v", err)
			}
			product.Status = b
		case "thumbnails":
			t, err := toStringSlice(v)
			if err != nil {
				return validationErrorf("invalid thumbnails: %v", err)
			}
			product.Thumbnails = t
		}
	}
	return nil
}

// DeleteProduct removes the product with the given id, reporting
// whether a record was actually removed. Deleting a product does not
// touch carts that reference it.
func (s *ProductService) DeleteProduct(id string) (bool, error) {
	pid, err := toNumber(id)
	if err != nil {
		return false, validationErrorf("invalid product id")
	}

	removed := false
	err = s.coll.Mutate(func(products []models.Product) ([]models.Product, bool, error) {
		for i := range products {
			if float64(products[i].ID) == pid {
				removed = true
				return append(products[:i], products[i+1:]...), true, nil
			}
		}
		return nil, false, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	if removed {
		s.publishEvent("product.deleted", map[string]any{"id": int(pid)})
	}
	return removed, nil
}

// publishEvent sends a product event to the message queue when a client
// is configured. Publish failures are logged, never surfaced: the
// mutation has already been persisted.
func (s *ProductService) publishEvent(event string, payload any) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.Publish(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
