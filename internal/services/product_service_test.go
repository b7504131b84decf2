package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"
)

func validProductInput() map[string]any {
	return map[string]any{
		"title":       "Laptop",
		"description": "High performance laptop",
		"code":        "L-100",
		"price":       1200.50,
		"status":      true,
		"stock":       10,
		"category":    "tech",
		"thumbnails":  []any{"/uploads/a.png", "/uploads/b.png"},
	}
}

func newProductService() (*services.ProductService, *repositories.MemoryCollection[models.Product]) {
	coll := repositories.NewMemoryCollection[models.Product]()
	return services.NewProductService(coll, nil), coll
}

func TestProductService_AddThenGetRoundTrip(t *testing.T) {
	service, _ := newProductService()

	created, err := service.AddProduct(validProductInput())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Laptop", created.Title)
	assert.Equal(t, 1200.50, created.Price)
	assert.True(t, created.Status)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png"}, created.Thumbnails)

	fetched, err := service.GetProductByID("1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created, fetched)
}

func TestProductService_AddCoercesLooseTypes(t *testing.T) {
	service, _ := newProductService()

	input := validProductInput()
	input["price"] = "19.95" // numeric string
	input["stock"] = "3"
	input["status"] = "yes" // text boolean form
	input["title"] = 42     // scalar stringified

	created, err := service.AddProduct(input)
	require.NoError(t, err)
	assert.Equal(t, 19.95, created.Price)
	assert.Equal(t, 3.0, created.Stock)
	assert.True(t, created.Status)
	assert.Equal(t, "42", created.Title)
}

func TestProductService_AddRejectsFirstMissingField(t *testing.T) {
	service, coll := newProductService()

	for _, tc := range []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"absent", func(in map[string]any) { delete(in, "code") }, "code"},
		{"null", func(in map[string]any) { in["description"] = nil }, "description"},
		{"empty string", func(in map[string]any) { in["title"] = "" }, "title"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := validProductInput()
			tc.mutate(input)

			created, err := service.AddProduct(input)
			require.Error(t, err)
			assert.True(t, services.IsValidationError(err))
			assert.Contains(t, err.Error(), tc.field)
			assert.Nil(t, created)
		})
	}

	// Nothing was persisted by the failed attempts.
	records, err := coll.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProductService_AddRejectsUncoercibleValues(t *testing.T) {
	service, _ := newProductService()

	input := validProductInput()
	input["price"] = "not a number"
	_, err := service.AddProduct(input)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Contains(t, err.Error(), "price")

	input = validProductInput()
	input["status"] = "maybe"
	_, err = service.AddProduct(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")

	input = validProductInput()
	input["thumbnails"] = "not-an-array"
	_, err = service.AddProduct(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumbnails")
}

func TestProductService_GetProductByID(t *testing.T) {
	service, _ := newProductService()
	_, err := service.AddProduct(validProductInput())
	require.NoError(t, err)

	// Unknown id is a distinguished empty result, not an error.
	product, err := service.GetProductByID("99")
	require.NoError(t, err)
	assert.Nil(t, product)

	// Non-numeric id fails coercion.
	product, err = service.GetProductByID("abc")
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Nil(t, product)
}

func TestProductService_UpdateIsPartial(t *testing.T) {
	service, _ := newProductService()
	created, err := service.AddProduct(validProductInput())
	require.NoError(t, err)

	updated, err := service.UpdateProduct("1", map[string]any{
		"price":   "99.99",
		"unknown": "silently dropped",
		"id":      42, // immutable, ignored
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 99.99, updated.Price)
	// Fields absent from the payload are untouched.
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Stock, updated.Stock)
	assert.Equal(t, created.Thumbnails, updated.Thumbnails)
}

func TestProductService_UpdateNotFoundAndBadInput(t *testing.T) {
	service, _ := newProductService()
	_, err := service.AddProduct(validProductInput())
	require.NoError(t, err)

	updated, err := service.UpdateProduct("99", map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, updated)

	_, err = service.UpdateProduct("nope", map[string]any{"title": "x"})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))

	_, err = service.UpdateProduct("1", map[string]any{"stock": "many"})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Contains(t, err.Error(), "stock")
}

func TestProductService_DeleteSemantics(t *testing.T) {
	service, _ := newProductService()
	_, err := service.AddProduct(validProductInput())
	require.NoError(t, err)

	removed, err := service.DeleteProduct("1")
	require.NoError(t, err)
	assert.True(t, removed)

	// Deleted records are gone for good.
	product, err := service.GetProductByID("1")
	require.NoError(t, err)
	assert.Nil(t, product)

	// Deleting a nonexistent id reports false, not an error.
	removed, err = service.DeleteProduct("1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProductService_IDReuseAfterDeletingMax(t *testing.T) {
	service, _ := newProductService()

	first, err := service.AddProduct(validProductInput())
	require.NoError(t, err)
	second, err := service.AddProduct(validProductInput())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)

	removed, err := service.DeleteProduct("2")
	require.NoError(t, err)
	require.True(t, removed)

	// Id assignment scans current records, so the vacated maximum id
	// is handed out again.
	third, err := service.AddProduct(validProductInput())
	require.NoError(t, err)
	assert.Equal(t, 2, third.ID)
}

func TestProductService_ListPreservesInsertionOrder(t *testing.T) {
	service, _ := newProductService()

	for i, title := range []string{"first", "second", "third"} {
		input := validProductInput()
		input["title"] = title
		created, err := service.AddProduct(input)
		require.NoError(t, err)
		assert.Equal(t, i+1, created.ID)
	}

	products, err := service.GetProducts()
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "first", products[0].Title)
	assert.Equal(t, "second", products[1].Title)
	assert.Equal(t, "third", products[2].Title)
}
