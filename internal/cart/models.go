package cart

import (
	"encoding/json"
	"fmt"
)

// Placeholder values for fields the backend may omit.
const (
	UnknownProduct      = "Unknown Product"
	PlaceholderImage    = "/placeholder-product.png"
	defaultStock        = 999
	defaultItemQuantity = 1
)

// Item is a normalized cart line.
type Item struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"productId"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Subtotal      float64 `json:"subtotal"`
	StockQuantity int     `json:"stockQuantity"`
	Image         string  `json:"image"`
}

// Cart is the current user's cart.
type Cart struct {
	ID          int64   `json:"id"`
	CustomerID  int64   `json:"customerId"`
	Items       []Item  `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
	TotalItems  int     `json:"totalItems"`
}

// rawItem accepts every field spelling the backend has used.
type rawItem struct {
	ID               int64   `json:"id"`
	ProductID        int64   `json:"productId"`
	ProductName      string  `json:"productName"`
	Name             string  `json:"name"`
	UnitPrice        float64 `json:"unitPrice"`
	Price            float64 `json:"price"`
	Quantity         int     `json:"quantity"`
	Subtotal         float64 `json:"subtotal"`
	StockQuantity    int     `json:"stockQuantity"`
	ProductThumbnail string  `json:"productThumbnail"`
	ImageURL         string  `json:"imageUrl"`
	Image            string  `json:"image"`
}

func (r rawItem) normalize() Item {
	item := Item{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Name:          firstNonEmpty(r.ProductName, r.Name, UnknownProduct),
		Price:         r.UnitPrice,
		Quantity:      r.Quantity,
		Subtotal:      r.Subtotal,
		StockQuantity: r.StockQuantity,
		Image:         firstNonEmpty(r.ProductThumbnail, r.ImageURL, r.Image, PlaceholderImage),
	}
	if item.Price == 0 {
		item.Price = r.Price
	}
	if item.Quantity == 0 {
		item.Quantity = defaultItemQuantity
	}
	if item.Subtotal == 0 {
		item.Subtotal = item.Price * float64(item.Quantity)
	}
	if item.StockQuantity == 0 {
		item.StockQuantity = defaultStock
	}
	return item
}

type rawCart struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customerId"`
	Items       []rawItem `json:"items"`
	CartItems   []rawItem `json:"cartItems"`
	TotalAmount float64   `json:"totalAmount"`
	TotalItems  int       `json:"totalItems"`
}

// UnmarshalJSON accepts a cart object with items or cartItems, or a bare item
// array, and normalizes every line.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw rawCart
	var items []rawItem
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode cart items: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode cart: %w", err)
		}
		items = raw.Items
		if len(items) == 0 {
			items = raw.CartItems
		}
	}

	*c = Cart{
		ID:          raw.ID,
		CustomerID:  raw.CustomerID,
		Items:       make([]Item, 0, len(items)),
		TotalAmount: raw.TotalAmount,
		TotalItems:  raw.TotalItems,
	}
	for _, it := range items {
		c.Items = append(c.Items, it.normalize())
	}
	if c.TotalItems == 0 {
		for _, it := range c.Items {
			c.TotalItems += it.Quantity
		}
	}
	if c.TotalAmount == 0 {
		for _, it := range c.Items {
			c.TotalAmount += it.Subtotal
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
