// Package order wraps checkout, order history and seller fulfilment endpoints.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abduss/storefront/internal/gateway"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps checkout validation failures.
var ErrInvalidInput = errors.New("invalid order input")

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Service exposes order operations.
type Service struct {
	api      apiClient
	validate *validator.Validate
}

// NewService creates a Service.
func NewService(api apiClient) *Service {
	return &Service{api: api, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Place submits an order built from cart items. The response is returned as
// received because the backend does not always envelope it.
func (s *Service) Place(ctx context.Context, input PlaceInput) (Order, error) {
	input.PaymentMethod = strings.ToUpper(strings.TrimSpace(input.PaymentMethod))
	if err := s.validate.Struct(input); err != nil {
		return Order{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodPost, Path: "/orders", Body: input})
	if err != nil {
		return Order{}, fmt.Errorf("place order: %w", err)
	}
	var o Order
	if err := resp.Decode(&o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.one(ctx, &gateway.Request{Method: http.MethodGet, Path: orderPath(id)}, "get order")
}

// MyOrders lists the signed-in customer's orders.
func (s *Service) MyOrders(ctx context.Context, page, size int) (gateway.Page[Order], error) {
	return s.page(ctx, "/orders/my-orders", "", page, size)
}

// Cancel cancels an order.
func (s *Service) Cancel(ctx context.Context, id int64) (Order, error) {
	return s.one(ctx, &gateway.Request{Method: http.MethodPut, Path: orderPath(id) + "/cancel"}, "cancel order")
}

// ShopOrders lists orders of a shop, optionally filtered by status.
func (s *Service) ShopOrders(ctx context.Context, shopID int64, status string, page, size int) (gateway.Page[Order], error) {
	return s.page(ctx, "/orders/shop/"+strconv.FormatInt(shopID, 10), status, page, size)
}

// SellerOrders lists orders of the signed-in seller's shop.
func (s *Service) SellerOrders(ctx context.Context, status string, page, size int) (gateway.Page[Order], error) {
	return s.page(ctx, "/orders/seller/orders", status, page, size)
}

// UpdateStatus moves an order through fulfilment.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return Order{}, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	return s.one(ctx, &gateway.Request{
		Method: http.MethodPut,
		Path:   orderPath(id) + "/status",
		Body:   map[string]string{"status": status},
	}, "update order status")
}

// PaymentPath returns the payment endpoint segment for method. Unknown
// methods use VNPay.
func PaymentPath(method string) string {
	if p, ok := paymentPaths[strings.ToUpper(strings.TrimSpace(method))]; ok {
		return p
	}
	return defaultPaymentPath
}

// CreatePayment starts an online payment for orderCode and returns the
// provider's reply, usually a redirect URL.
func (s *Service) CreatePayment(ctx context.Context, method, orderCode string) (string, error) {
	if strings.TrimSpace(orderCode) == "" {
		return "", fmt.Errorf("%w: order code is required", ErrInvalidInput)
	}
	resp, err := s.api.Do(ctx, &gateway.Request{
		Method: http.MethodPost,
		Path:   "/payment/" + PaymentPath(method),
		Query:  url.Values{"orderCode": []string{orderCode}},
	})
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}
	return paymentURL(resp), nil
}

func paymentURL(resp *gateway.Response) string {
	var s string
	if err := resp.Decode(&s); err == nil && s != "" {
		return s
	}
	var obj struct {
		URL        string `json:"url"`
		PaymentURL string `json:"paymentUrl"`
	}
	if err := resp.Decode(&obj); err == nil {
		if obj.PaymentURL != "" {
			return obj.PaymentURL
		}
		if obj.URL != "" {
			return obj.URL
		}
	}
	if json.Valid(resp.Body) {
		return resp.Message()
	}
	return strings.TrimSpace(string(resp.Body))
}

func (s *Service) one(ctx context.Context, req *gateway.Request, op string) (Order, error) {
	resp, err := s.api.Do(ctx, req)
	if err != nil {
		return Order{}, fmt.Errorf("%s: %w", op, err)
	}
	var o Order
	if err := resp.Decode(&o); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Service) page(ctx context.Context, path, status string, page, size int) (gateway.Page[Order], error) {
	q := gateway.PageQuery{Page: page, Size: size}.Values()
	if status != "" {
		q.Set("status", strings.ToUpper(status))
	}
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: path, Query: q})
	if err != nil {
		return gateway.Page[Order]{}, fmt.Errorf("list orders: %w", err)
	}
	var p gateway.Page[Order]
	if err := resp.Decode(&p); err != nil {
		return gateway.Page[Order]{}, err
	}
	return p, nil
}

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10)
}
