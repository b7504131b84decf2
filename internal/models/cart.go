package models

import "encoding/json"

// CartItem is a single (product reference, quantity) pair within a cart.
type CartItem struct {
	Product  int     `json:"product"`
	Quantity float64 `json:"quantity"`
}

// Cart represents a shopping cart: an ordered list of cart items with
// unique product ids.
type Cart struct {
	ID       int        `json:"id"`
	Products []CartItem `json:"products"`
}

// CartItemInput is a loosely-typed cart entry as sent by clients. The
// product reference may arrive under either "id" or "product".
type CartItemInput struct {
	ID       any `json:"id"`
	Product  any `json:"product"`
	Quantity any `json:"quantity"`
}

// Ref returns the product reference, preferring "id" over "product".
func (i CartItemInput) Ref() any {
	if i.ID != nil {
		return i.ID
	}
	return i.Product
}

// CreateCartRequest accepts either a bare JSON array of items or an
// object wrapping one under "products".
type CreateCartRequest struct {
	Products []CartItemInput `json:"products"`
}

// UnmarshalJSON lets callers send the item list with or without the
// envelope object.
func (r *CreateCartRequest) UnmarshalJSON(data []byte) error {
	var items []CartItemInput
	if err := json.Unmarshal(data, &items); err == nil {
		r.Products = items
		return nil
	}
	type envelope CreateCartRequest
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.Products = env.Products
	return nil
}
