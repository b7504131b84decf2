package realtime

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"tienda/internal/models"
	"tienda/internal/services"
)

// Message is the envelope exchanged over the websocket. Clients send
// product:create / product:delete with an id for correlating the ack;
// the server pushes the full catalog as a products event after every
// mutation.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    int             `json:"id,omitempty"`
}

// ackPayload is the body of an ack message.
type ackPayload struct {
	OK      bool            `json:"ok"`
	Product *models.Product `json:"product,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// client is one connected listener with a buffered outbound queue and a
// single writer goroutine, so broadcasts never interleave writes.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (cl *client) writeLoop() {
	for msg := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Hub tracks connected websocket clients and fans the current product
// list out to all of them after any mutating product operation.
type Hub struct {
	products *services.ProductService
	mu       sync.Mutex
	clients  map[*client]struct{}
}

// NewHub creates a Hub over the given product service.
func NewHub(products *services.ProductService) *Hub {
	return &Hub{
		products: products,
		clients:  make(map[*client]struct{}),
	}
}

// Handler returns the Fiber handler for the websocket endpoint.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

// Upgrade is the middleware gating the websocket route to genuine
// upgrade requests.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *Hub) serve(conn *websocket.Conn) {
	cl := &client{conn: conn, send: make(chan []byte, 16)}
	h.register(cl)
	defer h.unregister(cl)

	go cl.writeLoop()

	// Greet the new listener with the current catalog.
	if msg, err := h.productsMessage(); err == nil {
		h.push(cl, msg)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply, broadcast := h.handleRaw(raw)
		if reply != nil {
			h.push(cl, reply)
		}
		if broadcast {
			h.BroadcastProducts()
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = struct{}{}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// push queues a message for one client, dropping the client if its
// queue is full rather than blocking everyone else.
func (h *Hub) push(cl *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- msg:
	default:
		delete(h.clients, cl)
		close(cl.send)
		log.Printf("Dropped slow websocket client")
	}
}

// BroadcastProducts pushes the full current product list to every
// connected client.
func (h *Hub) BroadcastProducts() {
	msg, err := h.productsMessage()
	if err != nil {
		log.Printf("Error building products broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			delete(h.clients, cl)
			close(cl.send)
			log.Printf("Dropped slow websocket client")
		}
	}
}

// productsMessage builds the products event carrying the full catalog.
func (h *Hub) productsMessage() ([]byte, error) {
	products, err := h.products.GetProducts()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: "products", Data: data})
}

// handleRaw dispatches one inbound message and returns the ack to send
// back (nil for unrecognized input) plus whether the catalog changed
// and should be re-broadcast.
func (h *Hub) handleRaw(raw []byte) (reply []byte, broadcast bool) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Ignoring malformed websocket message: %v", err)
		return nil, false
	}

	switch msg.Event {
	case "product:create":
		var input map[string]any
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			return h.ack(msg.ID, ackPayload{OK: false, Error: "invalid product payload"}), false
		}
		product, err := h.products.AddProduct(input)
		if err != nil {
			return h.ack(msg.ID, ackPayload{OK: false, Error: err.Error()}), false
		}
		return h.ack(msg.ID, ackPayload{OK: true, Product: product}), true

	case "product:delete":
		id, err := decodeID(msg.Data)
		if err != nil {
			return h.ack(msg.ID, ackPayload{OK: false, Error: "invalid product id"}), false
		}
		removed, err := h.products.DeleteProduct(id)
		if err != nil {
			return h.ack(msg.ID, ackPayload{OK: false, Error: err.Error()}), false
		}
		if !removed {
			return h.ack(msg.ID, ackPayload{OK: false, Error: "Product not found"}), false
		}
		return h.ack(msg.ID, ackPayload{OK: true}), true

	default:
		log.Printf("Ignoring unknown websocket event %q", msg.Event)
		return nil, false
	}
}

// ack builds the ack message correlated to the inbound id.
func (h *Hub) ack(id int, payload ackPayload) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling ack: %v", err)
		return nil
	}
	out, err := json.Marshal(Message{Event: "ack", ID: id, Data: data})
	if err != nil {
		log.Printf("Error marshaling ack envelope: %v", err)
		return nil
	}
	return out
}

// decodeID accepts a product id sent either as a JSON number or string.
func decodeID(data json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return asString, nil
	}
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return "", err
	}
	return strconv.FormatFloat(asNumber, 'f', -1, 64), nil
}
