package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"
)

func newHub(t *testing.T) (*Hub, *services.ProductService) {
	t.Helper()
	coll := repositories.NewMemoryCollection[models.Product]()
	service := services.NewProductService(coll, nil)
	return NewHub(service), service
}

func decodeAck(t *testing.T, raw []byte) (Message, ackPayload) {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.Equal(t, "ack", msg.Event)
	var payload ackPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	return msg, payload
}

func TestHub_CreateEventAcksAndBroadcasts(t *testing.T) {
	hub, service := newHub(t)

	inbound, err := json.Marshal(map[string]any{
		"event": "product:create",
		"id":    7,
		"data": map[string]any{
			"title":       "Laptop",
			"description": "High performance",
			"code":        "L-1",
			"price":       1200,
			"status":      true,
			"stock":       10,
			"category":    "tech",
			"thumbnails":  []string{},
		},
	})
	require.NoError(t, err)

	reply, broadcast := hub.handleRaw(inbound)
	require.NotNil(t, reply)
	assert.True(t, broadcast)

	msg, payload := decodeAck(t, reply)
	assert.Equal(t, 7, msg.ID)
	assert.True(t, payload.OK)
	require.NotNil(t, payload.Product)
	assert.Equal(t, 1, payload.Product.ID)

	products, err := service.GetProducts()
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestHub_CreateEventReportsValidationError(t *testing.T) {
	hub, _ := newHub(t)

	reply, broadcast := hub.handleRaw([]byte(`{"event":"product:create","id":3,"data":{"title":"only"}}`))
	require.NotNil(t, reply)
	assert.False(t, broadcast)

	msg, payload := decodeAck(t, reply)
	assert.Equal(t, 3, msg.ID)
	assert.False(t, payload.OK)
	assert.Contains(t, payload.Error, "description")
}

func TestHub_DeleteEvent(t *testing.T) {
	hub, service := newHub(t)
	_, err := service.AddProduct(map[string]any{
		"title": "Laptop", "description": "d", "code": "c",
		"price": 1, "status": true, "stock": 1, "category": "tech",
		"thumbnails": []any{},
	})
	require.NoError(t, err)

	// The id may come in as a string (DOM attribute) or a number.
	reply, broadcast := hub.handleRaw([]byte(`{"event":"product:delete","id":1,"data":"1"}`))
	_, payload := decodeAck(t, reply)
	assert.True(t, payload.OK)
	assert.True(t, broadcast)

	reply, broadcast = hub.handleRaw([]byte(`{"event":"product:delete","id":2,"data":1}`))
	_, payload = decodeAck(t, reply)
	assert.False(t, payload.OK)
	assert.Equal(t, "Product not found", payload.Error)
	assert.False(t, broadcast)
}

func TestHub_IgnoresUnknownAndMalformedMessages(t *testing.T) {
	hub, _ := newHub(t)

	reply, broadcast := hub.handleRaw([]byte(`{"event":"cart:create"}`))
	assert.Nil(t, reply)
	assert.False(t, broadcast)

	reply, broadcast = hub.handleRaw([]byte(`not json`))
	assert.Nil(t, reply)
	assert.False(t, broadcast)
}

func TestHub_ProductsMessageCarriesCatalog(t *testing.T) {
	hub, service := newHub(t)
	_, err := service.AddProduct(map[string]any{
		"title": "Mouse", "description": "d", "code": "c",
		"price": 25, "status": true, "stock": 5, "category": "tech",
		"thumbnails": []any{},
	})
	require.NoError(t, err)

	raw, err := hub.productsMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "products", msg.Event)

	var products []models.Product
	require.NoError(t, json.Unmarshal(msg.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Mouse", products[0].Title)
}
