// Package cart wraps the cart endpoints.
package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abduss/storefront/internal/gateway"
)

// ErrInvalidQuantity is returned for a non-positive product id or quantity.
var ErrInvalidQuantity = errors.New("invalid cart quantity")

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Service exposes cart operations for the signed-in user.
type Service struct {
	api apiClient
}

// NewService creates a Service.
func NewService(api apiClient) *Service {
	return &Service{api: api}
}

// Get returns the cart.
func (s *Service) Get(ctx context.Context) (Cart, error) {
	return s.call(ctx, &gateway.Request{Method: http.MethodGet, Path: "/cart"}, "get cart")
}

// AddItem adds quantity units of a product. A zero quantity adds one.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) (Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if productID <= 0 || quantity < 0 {
		return Cart{}, ErrInvalidQuantity
	}
	return s.call(ctx, &gateway.Request{
		Method: http.MethodPost,
		Path:   "/cart/items",
		Body:   map[string]any{"productId": productID, "quantity": quantity},
	}, "add cart item")
}

// UpdateQuantity sets an item's quantity. A quantity below one removes the
// item.
func (s *Service) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, itemID)
	}
	return s.call(ctx, &gateway.Request{
		Method: http.MethodPut,
		Path:   "/cart/items/" + strconv.FormatInt(itemID, 10),
		Query:  url.Values{"quantity": []string{strconv.Itoa(quantity)}},
	}, "update cart item")
}

// RemoveItem drops an item from the cart.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) (Cart, error) {
	return s.call(ctx, &gateway.Request{
		Method: http.MethodDelete,
		Path:   "/cart/items/" + strconv.FormatInt(itemID, 10),
	}, "remove cart item")
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	if _, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodDelete, Path: "/cart"}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Service) call(ctx context.Context, req *gateway.Request, op string) (Cart, error) {
	resp, err := s.api.Do(ctx, req)
	if err != nil {
		return Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	var c Cart
	if err := resp.Decode(&c); err != nil {
		return Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}
