// Package account covers the signed-in user's profile and admin user management.
package account

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

const (
	mePath    = "/users/me"
	usersPath = "/admin/users"
)

var ErrInvalidInput = errors.New("invalid account input")

type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

type Service struct {
	api      apiClient
	cache    *apicache.Cache
	validate *validator.Validate
}

func NewService(api apiClient, cache *apicache.Cache) *Service {
	return &Service{api: api, cache: cache, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Me returns the signed-in user's profile, cached briefly.
func (s *Service) Me(ctx context.Context) (User, error) {
	return apicache.Fetch(s.cache, mePath, apicache.Short, func() (User, error) {
		var u User
		if err := s.call(ctx, http.MethodGet, mePath, nil, nil, &u); err != nil {
			return u, fmt.Errorf("get profile: %w", err)
		}
		return u, nil
	})
}

func (s *Service) UpdateProfile(ctx context.Context, input ProfileInput) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var u User
	if err := s.call(ctx, http.MethodPut, mePath, nil, input, &u); err != nil {
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	s.cache.Invalidate(mePath)
	return u, nil
}

// ChangePassword requires the confirmation to match before calling the backend.
func (s *Service) ChangePassword(ctx context.Context, input PasswordInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.call(ctx, http.MethodPost, mePath+"/change-password", nil, input, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// ListUsers pages through users. Results are cached per filter.
func (s *Service) ListUsers(ctx context.Context, f UserFilter) (gateway.Page[User], error) {
	query := gateway.PageQuery{Page: f.Page, Size: f.Size, SortBy: f.SortBy, SortDir: f.SortDir}.Values()
	for k, v := range map[string]string{
		"role":     strings.ToUpper(f.Role),
		"status":   strings.ToUpper(f.Status),
		"keyword":  strings.TrimSpace(f.Keyword),
		"dateFrom": f.DateFrom,
		"dateTo":   f.DateTo,
	} {
		if v != "" {
			query.Set(k, v)
		}
	}
	return apicache.Fetch(s.cache, apicache.Key(usersPath, query), apicache.Medium, func() (gateway.Page[User], error) {
		var page gateway.Page[User]
		if err := s.call(ctx, http.MethodGet, usersPath, query, nil, &page); err != nil {
			return page, fmt.Errorf("list users: %w", err)
		}
		return page, nil
	})
}

func (s *Service) User(ctx context.Context, id int64) (User, error) {
	path := userPath(id)
	return apicache.Fetch(s.cache, path, apicache.Medium, func() (User, error) {
		var u User
		if err := s.call(ctx, http.MethodGet, path, nil, nil, &u); err != nil {
			return u, fmt.Errorf("get user %d: %w", id, err)
		}
		return u, nil
	})
}

func (s *Service) CreateUser(ctx context.Context, input UserInput) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if input.Email == "" || input.Password == "" {
		return User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	var u User
	if err := s.call(ctx, http.MethodPost, usersPath, nil, input, &u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	s.cache.InvalidatePattern(usersPath)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, input UserInput) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var u User
	if err := s.call(ctx, http.MethodPut, userPath(id), nil, input, &u); err != nil {
		return User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	s.invalidateUser(id)
	return u, nil
}

// SetStatus changes a user's status (ACTIVE, INACTIVE or BANNED).
func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if err := s.validate.Var(status, "oneof=ACTIVE INACTIVE BANNED"); err != nil {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	query := url.Values{"status": []string{status}}
	if err := s.call(ctx, http.MethodPatch, userPath(id)+"/status", query, nil, nil); err != nil {
		return fmt.Errorf("set user %d status: %w", id, err)
	}
	s.invalidateUser(id)
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.call(ctx, http.MethodDelete, userPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.invalidateUser(id)
	return nil
}

// Invalidate drops the cached profile and every cached admin user response.
func (s *Service) Invalidate() {
	s.cache.Invalidate(mePath)
	s.cache.InvalidatePattern(usersPath)
}

func (s *Service) invalidateUser(id int64) {
	s.cache.Invalidate(userPath(id))
	s.cache.InvalidatePattern(usersPath)
}

func (s *Service) call(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: method, Path: path, Query: query, Body: body})
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return resp.Decode(dst)
}

func userPath(id int64) string {
	return usersPath + "/" + strconv.FormatInt(id, 10)
}
