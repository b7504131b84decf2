package models

// Product represents a catalog entry in the store.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Code        string   `json:"code" validate:"required"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       float64  `json:"stock"`
	Category    string   `json:"category" validate:"required"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductFields lists the business fields a product payload must carry,
// in the order they are checked; a validation failure names the first
// missing one.
var ProductFields = []string{"title", "description", "code", "price", "status", "stock", "category", "thumbnails"}
