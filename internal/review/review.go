// Package review wraps review moderation and listing endpoints.
package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/abduss/storefront/internal/gateway"
)

// Status is a moderation state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ErrInvalidStatus is returned for a status outside the moderation states.
var ErrInvalidStatus = errors.New("invalid review status")

// ParseStatus validates a status string, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Customer identifies the review author.
type Customer struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Review is a product review.
type Review struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"productId"`
	ProductName      string    `json:"productName"`
	ProductThumbnail string    `json:"productThumbnail,omitempty"`
	OrderID          int64     `json:"orderId,omitempty"`
	OrderCode        string    `json:"orderCode,omitempty"`
	Customer         *Customer `json:"customer,omitempty"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	Images           []string  `json:"images,omitempty"`
	Status           Status    `json:"status"`
	CreatedAt        string    `json:"createdAt,omitempty"`
}

// Stats is the moderation summary. The backend shape is open-ended.
type Stats map[string]any

// DefaultQuery is the listing order used when none is given.
var DefaultQuery = gateway.PageQuery{Page: 0, Size: 10, SortBy: "createdAt", SortDir: "desc"}

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Service exposes review operations.
type Service struct {
	api apiClient
}

// NewService creates a Service.
func NewService(api apiClient) *Service {
	return &Service{api: api}
}

// ListManagement lists every review for moderation.
func (s *Service) ListManagement(ctx context.Context, q gateway.PageQuery) (gateway.Page[Review], error) {
	return s.page(ctx, "/reviews/management", q)
}

// ListByProduct lists reviews of one product.
func (s *Service) ListByProduct(ctx context.Context, productID int64, q gateway.PageQuery) (gateway.Page[Review], error) {
	return s.page(ctx, "/reviews/product/"+strconv.FormatInt(productID, 10), q)
}

// Get fetches one review.
func (s *Service) Get(ctx context.Context, id int64) (Review, error) {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: reviewPath(id)})
	if err != nil {
		return Review{}, fmt.Errorf("get review %d: %w", id, err)
	}
	var r Review
	if err := resp.Decode(&r); err != nil {
		return Review{}, err
	}
	return r, nil
}

// Delete removes a review.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodDelete, Path: reviewPath(id)}); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

// UpdateStatus moves a review to a moderation state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	_, err := s.api.Do(ctx, &gateway.Request{
		Method: http.MethodPatch,
		Path:   reviewPath(id) + "/status",
		Body:   map[string]Status{"status": status},
	})
	if err != nil {
		return fmt.Errorf("update review %d status: %w", id, err)
	}
	return nil
}

// Stats returns moderation statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: "/reviews/stats"})
	if err != nil {
		return nil, fmt.Errorf("get review stats: %w", err)
	}
	stats := Stats{}
	if err := resp.Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) page(ctx context.Context, path string, q gateway.PageQuery) (gateway.Page[Review], error) {
	if q.SortBy == "" {
		q.SortBy = DefaultQuery.SortBy
	}
	if q.SortDir == "" {
		q.SortDir = DefaultQuery.SortDir
	}
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: path, Query: q.Values()})
	if err != nil {
		return gateway.Page[Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	var page gateway.Page[Review]
	if err := resp.Decode(&page); err != nil {
		return gateway.Page[Review]{}, err
	}
	return page, nil
}

func reviewPath(id int64) string {
	return "/reviews/" + strconv.FormatInt(id, 10)
}

