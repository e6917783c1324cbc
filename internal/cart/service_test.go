package cart

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/abduss/storefront/internal/gateway"
)

// fakeAPI records requests and replies with a canned body.
type fakeAPI struct {
	requests []*gateway.Request
	body     string
	err      error
}

func (f *fakeAPI) Do(_ context.Context, req *gateway.Request) (*gateway.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Response{Status: http.StatusOK, Body: []byte(f.body)}, nil
}

func (f *fakeAPI) last() *gateway.Request {
	return f.requests[len(f.requests)-1]
}

func TestGetNormalizesItems(t *testing.T) {
	api := &fakeAPI{body: `{"success":true,"data":{"id":3,"items":[
		{"id":1,"productId":10,"productName":"Lamp","unitPrice":20,"quantity":2,"productThumbnail":"/lamp.png","stockQuantity":4},
		{"id":2,"productId":11,"name":"Mug","price":5}
	]}}`}
	service := NewService(api)

	c, err := service.Get(context.Background())
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(c.Items))
	}
	lamp, mug := c.Items[0], c.Items[1]
	if lamp.Name != "Lamp" || lamp.Subtotal != 40 || lamp.Image != "/lamp.png" || lamp.StockQuantity != 4 {
		t.Fatalf("unexpected lamp %+v", lamp)
	}
	if mug.Name != "Mug" || mug.Quantity != 1 || mug.Subtotal != 5 || mug.Image != PlaceholderImage || mug.StockQuantity != 999 {
		t.Fatalf("unexpected mug %+v", mug)
	}
	if c.TotalItems != 3 || c.TotalAmount != 45 {
		t.Fatalf("expected derived totals 3/45, got %d/%v", c.TotalItems, c.TotalAmount)
	}
}

func TestGetAcceptsBareArrayAndUnknownNames(t *testing.T) {
	api := &fakeAPI{body: `{"success":true,"data":[{"id":1,"productId":10}]}`}

	c, err := NewService(api).Get(context.Background())
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Name != UnknownProduct {
		t.Fatalf("unexpected cart %+v", c)
	}
}

func TestEmptyCartHasNoItems(t *testing.T) {
	api := &fakeAPI{body: `{"success":true,"data":null}`}

	c, err := NewService(api).Get(context.Background())
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if c.Items == nil || len(c.Items) != 0 {
		t.Fatalf("expected empty item list, got %+v", c.Items)
	}
}

func TestAddItemDefaultsQuantity(t *testing.T) {
	api := &fakeAPI{body: `{"success":true,"data":{"items":[]}}`}

	if _, err := NewService(api).AddItem(context.Background(), 10, 0); err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	body := api.last().Body.(map[string]any)
	if api.last().Path != "/cart/items" || body["quantity"] != 1 {
		t.Fatalf("unexpected request %+v", api.last())
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	api := &fakeAPI{}
	service := NewService(api)

	if _, err := service.AddItem(context.Background(), 0, 1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := service.AddItem(context.Background(), 1, -2); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if len(api.requests) != 0 {
		t.Fatalf("expected no calls")
	}
}

func TestUpdateQuantity(t *testing.T) {
	api := &fakeAPI{body: `{"success":true,"data":{"items":[]}}`}
	service := NewService(api)

	if _, err := service.UpdateQuantity(context.Background(), 7, 3); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	req := api.last()
	if req.Method != http.MethodPut || req.Path != "/cart/items/7" || req.Query.Get("quantity") != "3" {
		t.Fatalf("unexpected request %+v", req)
	}

	if _, err := service.UpdateQuantity(context.Background(), 7, 0); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if req := api.last(); req.Method != http.MethodDelete || req.Path != "/cart/items/7" {
		t.Fatalf("expected zero quantity to remove the item, got %+v", req)
	}
}

func TestClearWrapsGatewayError(t *testing.T) {
	api := &fakeAPI{err: gateway.ErrNetwork}

	err := NewService(api).Clear(context.Background())
	if !errors.Is(err, gateway.ErrNetwork) {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
}
