package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abduss/storefront/internal/apicache"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/credstore"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

type fakeAPI struct {
	server      *httptest.Server
	logoutCalls atomic.Int32
	logoutFail  bool
	lastLogin   map[string]string
	lastSignup  map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastLogin)
		if f.lastLogin["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
			return
		}
		writeAuth(w, 5, f.lastLogin["email"], "Sam Seller", "SELLER")
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastSignup)
		if f.lastSignup["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"message":"Email already exists"}`))
			return
		}
		writeAuth(w, 9, f.lastSignup["email"].(string), f.lastSignup["fullName"].(string), f.lastSignup["role"].(string))
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		if f.logoutFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Logged out"}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":5,"email":"s@example.com","fullName":"Sam Seller","role":"seller","status":"ACTIVE"}}`))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeAuth(w http.ResponseWriter, id int64, email, name, role string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data": map[string]any{
			"accessToken":  "access-" + email,
			"refreshToken": "refresh-" + email,
			"tokenType":    "Bearer",
			"expiresIn":    3600,
			"userId":       id,
			"email":        email,
			"fullName":     name,
			"role":         role,
		},
	})
}

func newTestService(f *fakeAPI) (*Service, *credstore.Store, *apicache.Cache) {
	store := credstore.New(credstore.NewMemoryBackend(), nil)
	cache := apicache.New()
	client := gateway.New(config.APIConfig{BaseURL: f.server.URL + "/api", Timeout: 5 * time.Second}, store)
	return NewService(client, store, cache, nil), store, cache
}

func TestLoginPersistsSession(t *testing.T) {
	f := newFakeAPI(t)
	service, store, cache := newTestService(f)
	cache.Set("/products?", []byte("[]"))

	result, err := service.Login(context.Background(), LoginInput{Email: " s@example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if f.lastLogin["email"] != "s@example.com" {
		t.Fatalf("expected trimmed email sent, got %q", f.lastLogin["email"])
	}
	if token, _ := store.Get(session.KeyAccessToken); token != "access-s@example.com" {
		t.Fatalf("expected access token persisted, got %q", token)
	}
	if token, _ := store.Get(session.KeyRefreshToken); token != "refresh-s@example.com" {
		t.Fatalf("expected refresh token persisted, got %q", token)
	}
	want := session.Profile{ID: 5, Email: "s@example.com", FullName: "Sam Seller", Role: session.RoleSeller}
	if result.User != want {
		t.Fatalf("expected profile %+v, got %+v", want, result.User)
	}
	profile, ok := service.CurrentUser()
	if !ok || profile != want {
		t.Fatalf("expected cached profile %+v, got %+v", want, profile)
	}
	if service.RedirectPath() != session.SellerHome {
		t.Fatalf("expected seller home, got %s", service.RedirectPath())
	}
	if cache.Stats().Size != 0 {
		t.Fatalf("expected cache purged on sign-in")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFakeAPI(t)
	service, store, _ := newTestService(f)

	_, err := service.Login(context.Background(), LoginInput{Email: "s@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if service.IsAuthenticated() {
		t.Fatalf("expected no session after failed login")
	}
	if _, ok := store.Get(session.KeyUser); ok {
		t.Fatalf("expected no profile cached")
	}
}

func TestLoginValidation(t *testing.T) {
	f := newFakeAPI(t)
	service, _, _ := newTestService(f)

	for _, input := range []LoginInput{
		{Email: "", Password: "secret123"},
		{Email: "not-an-email", Password: "secret123"},
		{Email: "s@example.com"},
	} {
		if _, err := service.Login(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
	if f.lastLogin != nil {
		t.Fatalf("expected no backend call for invalid input")
	}
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	f := newFakeAPI(t)
	service, _, _ := newTestService(f)

	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "secret123",
		FullName: "New Customer",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if f.lastSignup["role"] != "CUSTOMER" {
		t.Fatalf("expected CUSTOMER role sent, got %v", f.lastSignup["role"])
	}
	if result.User.Role != session.RoleCustomer || service.RedirectPath() != session.HomeRoute {
		t.Fatalf("expected customer session, got %+v", result.User)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFakeAPI(t)
	service, _, _ := newTestService(f)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "boss@example.com",
		Password: "secret123",
		FullName: "Boss",
		Role:     session.RoleAdmin,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFakeAPI(t)
	service, _, _ := newTestService(f)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "secret123",
		FullName: "Someone",
		Role:     session.RoleSeller,
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	f := newFakeAPI(t)
	f.logoutFail = true
	service, store, cache := newTestService(f)

	if _, err := service.Login(context.Background(), LoginInput{Email: "s@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	cache.Set("/users/me", []byte("{}"))

	service.Logout(context.Background())

	if f.logoutCalls.Load() != 1 {
		t.Fatalf("expected one logout call, got %d", f.logoutCalls.Load())
	}
	for _, key := range []string{session.KeyAccessToken, session.KeyRefreshToken, session.KeyUser} {
		if _, ok := store.Get(key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
	if cache.Stats().Size != 0 {
		t.Fatalf("expected cache purged on logout")
	}
}

func TestLogoutWithoutRefreshTokenSkipsBackend(t *testing.T) {
	f := newFakeAPI(t)
	service, store, _ := newTestService(f)
	store.Set(session.KeyAccessToken, "a")

	service.Logout(context.Background())

	if f.logoutCalls.Load() != 0 {
		t.Fatalf("expected no logout call without refresh token")
	}
	if service.IsAuthenticated() {
		t.Fatalf("expected session cleared")
	}
}

func TestMe(t *testing.T) {
	f := newFakeAPI(t)
	service, store, _ := newTestService(f)
	store.Set(session.KeyAccessToken, "a")

	account, err := service.Me(context.Background())
	if err != nil {
		t.Fatalf("me returned error: %v", err)
	}
	if account.ID != 5 || account.Role != session.RoleSeller {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestTokenExpiry(t *testing.T) {
	f := newFakeAPI(t)
	service, store, _ := newTestService(f)

	if _, ok := service.TokenExpiry(); ok {
		t.Fatalf("expected no expiry without token")
	}

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "5",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-only-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	store.Set(session.KeyAccessToken, signed)

	got, ok := service.TokenExpiry()
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v (ok=%v)", exp, got, ok)
	}

	store.Set(session.KeyAccessToken, "opaque-token")
	if _, ok := service.TokenExpiry(); ok {
		t.Fatalf("expected opaque token to have no readable expiry")
	}
}
