// Package catalog wraps the product and category endpoints, caching reads.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abduss/storefront/internal/apicache"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/go-playground/validator/v10"
)

// DefaultProductPageSize matches the backend's default page size.
const DefaultProductPageSize = 12

// ErrInvalidInput wraps validation failures for admin writes.
var ErrInvalidInput = errors.New("invalid catalog input")

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Service exposes catalog reads and admin writes.
type Service struct {
	api      apiClient
	cache    *apicache.Cache
	validate *validator.Validate
}

// NewService creates a Service. A nil cache disables caching.
func NewService(api apiClient, cache *apicache.Cache) *Service {
	return &Service{api: api, cache: cache, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *Service) get(ctx context.Context, path string, query url.Values, dst any) error {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(dst)
}

func cached[T any](ctx context.Context, s *Service, path string, query url.Values, key string) (T, error) {
	return apicache.Fetch(s.cache, key, apicache.Medium, func() (T, error) {
		var out T
		if err := s.get(ctx, path, query, &out); err != nil {
			return out, fmt.Errorf("get %s: %w", path, err)
		}
		return out, nil
	})
}

func productQuery(q gateway.PageQuery) url.Values {
	if q.Size <= 0 {
		q.Size = DefaultProductPageSize
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortDir == "" {
		q.SortDir = "desc"
	}
	return q.Values()
}

// Products lists active products.
func (s *Service) Products(ctx context.Context, q gateway.PageQuery) (gateway.Page[Product], error) {
	query := productQuery(q)
	return cached[gateway.Page[Product]](ctx, s, "/products", query, apicache.Key("/products", query))
}

// Search finds products by keyword. Results are not cached.
func (s *Service) Search(ctx context.Context, keyword string, page, size int) (gateway.Page[Product], error) {
	if size <= 0 {
		size = DefaultProductPageSize
	}
	query := gateway.PageQuery{Page: page, Size: size}.Values()
	query.Set("keyword", strings.TrimSpace(keyword))

	var out gateway.Page[Product]
	if err := s.get(ctx, "/products/search", query, &out); err != nil {
		return out, fmt.Errorf("search products: %w", err)
	}
	return out, nil
}

// ByCategory lists products of a category.
func (s *Service) ByCategory(ctx context.Context, categoryID int64, page, size int) (gateway.Page[Product], error) {
	if size <= 0 {
		size = DefaultProductPageSize
	}
	path := "/products/category/" + strconv.FormatInt(categoryID, 10)
	query := gateway.PageQuery{Page: page, Size: size}.Values()
	return cached[gateway.Page[Product]](ctx, s, path, query, apicache.Key(path, query))
}

// Product fetches one product.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	path := productPath(id)
	return cached[Product](ctx, s, path, nil, path)
}

// TopSelling lists best-selling products.
func (s *Service) TopSelling(ctx context.Context, limit int) ([]Product, error) {
	return s.ranked(ctx, "/products/top-selling", limit)
}

// Newest lists the most recently added products.
func (s *Service) Newest(ctx context.Context, limit int) ([]Product, error) {
	return s.ranked(ctx, "/products/newest", limit)
}

func (s *Service) ranked(ctx context.Context, path string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	return cached[[]Product](ctx, s, path, query, apicache.Key(path, query))
}

// Management lists every product, inactive ones included. Admin only;
// results are not cached.
func (s *Service) Management(ctx context.Context, q gateway.PageQuery) (gateway.Page[Product], error) {
	var out gateway.Page[Product]
	if err := s.get(ctx, "/products/management", productQuery(q), &out); err != nil {
		return out, fmt.Errorf("list products for management: %w", err)
	}
	return out, nil
}

// CreateProduct adds a product and drops cached product lists.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return Product{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var out Product
	if err := s.write(ctx, http.MethodPost, "/products", input, &out); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.InvalidateProducts()
	return out, nil
}

// UpdateProduct changes a product and drops its cached entries.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return Product{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var out Product
	if err := s.write(ctx, http.MethodPut, productPath(id), input, &out); err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.InvalidateProduct(id)
	s.InvalidateProducts()
	return out, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.write(ctx, http.MethodDelete, productPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.InvalidateProducts()
	return nil
}

// InvalidateProducts drops every cached product response.
func (s *Service) InvalidateProducts() {
	s.cache.InvalidatePattern("/products")
}

// InvalidateProduct drops one product and the ranked lists it may appear in.
func (s *Service) InvalidateProduct(id int64) {
	s.cache.Invalidate(productPath(id))
	s.cache.InvalidatePattern("/products/top-selling")
	s.cache.InvalidatePattern("/products/newest")
}

// Categories lists categories matching f.
func (s *Service) Categories(ctx context.Context, f CategoryFilter) ([]Category, error) {
	query := url.Values{}
	if f.Keyword != "" {
		query.Set("keyword", f.Keyword)
	}
	if f.IsActive != nil {
		query.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	if f.ParentID != nil {
		query.Set("parentId", strconv.FormatInt(*f.ParentID, 10))
	}
	if f.RootOnly {
		query.Set("rootOnly", "true")
	}
	return cached[[]Category](ctx, s, "/categories", query, apicache.Key("/categories", query))
}

// Category fetches one category with its children.
func (s *Service) Category(ctx context.Context, id int64) (Category, error) {
	path := categoryPath(id)
	return cached[Category](ctx, s, path, nil, path)
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (Category, error) {
	if err := s.validate.Struct(input); err != nil {
		return Category{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var out Category
	if err := s.write(ctx, http.MethodPost, "/categories", input, &out); err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	s.InvalidateCategories()
	return out, nil
}

// UpdateCategory changes a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (Category, error) {
	if err := s.validate.Struct(input); err != nil {
		return Category{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var out Category
	if err := s.write(ctx, http.MethodPut, categoryPath(id), input, &out); err != nil {
		return Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	s.InvalidateCategories()
	return out, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.write(ctx, http.MethodDelete, categoryPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.InvalidateCategories()
	return nil
}

// InvalidateCategories drops every cached category response.
func (s *Service) InvalidateCategories() {
	s.cache.InvalidatePattern("/categories")
}

func (s *Service) write(ctx context.Context, method, path string, body, dst any) error {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return resp.Decode(dst)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func categoryPath(id int64) string {
	return "/categories/" + strconv.FormatInt(id, 10)
}
