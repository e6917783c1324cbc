package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abduss/storefront/internal/apicache"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// apiClient abstracts the gateway.
type apiClient interface {
	Do(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// credentialStore abstracts the persisted session state.
type credentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	GetJSON(key string, dst any) bool
	SetJSON(key string, v any)
	Clear()
}

// Service encapsulates the authentication use cases of the client.
type Service struct {
	api      apiClient
	store    credentialStore
	cache    *apicache.Cache
	validate *validator.Validate
	parser   *jwt.Parser
	logger   *zap.Logger
}

// NewService creates a Service. cache may be nil.
func NewService(api apiClient, store credentialStore, cache *apicache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      api,
		store:    store,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		parser:   jwt.NewParser(),
		logger:   logger.Named("auth"),
	}
}

// Login authenticates against the backend and persists the credential pair
// and profile.
func (s *Service) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodPost, Path: "/auth/login", Body: input})
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) || gateway.IsStatus(err, http.StatusUnauthorized) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}
	return s.persist(resp)
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Role == "" {
		input.Role = session.RoleCustomer
	}
	input.Role = session.ParseRole(string(input.Role))
	if err := s.validate.Struct(input); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodPost, Path: "/auth/register", Body: input})
	if err != nil {
		if gateway.IsStatus(err, http.StatusConflict) {
			return AuthResult{}, ErrEmailAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("register: %w", err)
	}
	return s.persist(resp)
}

func (s *Service) persist(resp *gateway.Response) (AuthResult, error) {
	var payload authPayload
	if err := resp.Decode(&payload); err != nil {
		return AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	if payload.AccessToken == "" {
		return AuthResult{}, errors.New("auth response carried no access token")
	}

	profile := payload.profile()
	s.cache.Clear()
	s.store.Set(session.KeyAccessToken, payload.AccessToken)
	s.store.Set(session.KeyRefreshToken, payload.RefreshToken)
	s.store.SetJSON(session.KeyUser, profile)

	s.logger.Info("signed in", zap.Int64("user_id", profile.ID), zap.String("role", string(profile.Role)))
	return AuthResult{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    payload.ExpiresIn,
		User:         profile,
	}, nil
}

// Logout revokes the refresh token on the backend when one is stored, then
// clears local state. Backend failures are logged and ignored.
func (s *Service) Logout(ctx context.Context) {
	if token, ok := s.store.Get(session.KeyRefreshToken); ok {
		_, err := s.api.Do(ctx, &gateway.Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Body:   map[string]string{"refreshToken": token},
		})
		if err != nil {
			s.logger.Warn("logout call failed", zap.Error(err))
		}
	}
	s.store.Clear()
	s.cache.Clear()
}

// Me fetches the current account from the backend.
func (s *Service) Me(ctx context.Context) (Account, error) {
	resp, err := s.api.Do(ctx, &gateway.Request{Method: http.MethodGet, Path: "/auth/me"})
	if err != nil {
		return Account{}, fmt.Errorf("get current user: %w", err)
	}
	var account Account
	if err := resp.Decode(&account); err != nil {
		return Account{}, err
	}
	account.Role = session.ParseRole(string(account.Role))
	return account, nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *Service) IsAuthenticated() bool {
	_, ok := s.store.Get(session.KeyAccessToken)
	return ok
}

// CurrentUser returns the cached profile.
func (s *Service) CurrentUser() (session.Profile, bool) {
	sess := s.Session()
	if sess.Profile == nil {
		return session.Profile{}, false
	}
	return *sess.Profile, true
}

// Session returns the stored session snapshot.
func (s *Service) Session() session.Session {
	return session.Load(s.store)
}

// RedirectPath is the landing route for the cached profile.
func (s *Service) RedirectPath() string {
	profile, ok := s.CurrentUser()
	if !ok {
		return session.HomeRoute
	}
	return session.HomeFor(profile.Role)
}

// TokenExpiry reads the exp claim of the stored access token without
// verifying its signature. The value is informational; the backend decides.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token, ok := s.store.Get(session.KeyAccessToken)
	if !ok {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
