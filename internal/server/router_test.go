package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/apicache"
	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/cart"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/credstore"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/metrics"
	"github.com/abduss/storefront/internal/order"
	"github.com/abduss/storefront/internal/report"
	"github.com/abduss/storefront/internal/review"
	"github.com/abduss/storefront/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consoleFixture struct {
	backend *httptest.Server
	store   *credstore.Store
	router  *gin.Engine
}

func newConsole(t *testing.T, mux *http.ServeMux, db pinger) *consoleFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()

	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	store := credstore.New(credstore.NewMemoryBackend(), nil)
	cache := apicache.New()
	cfg := config.Config{
		API:     config.APIConfig{BaseURL: backend.URL + "/api", Timeout: 5 * time.Second},
		Metrics: config.MetricsConfig{PrometheusPath: "/metrics"},
	}
	api := gateway.New(cfg.API, store)

	router := NewRouter(Dependencies{
		Config:   cfg,
		Store:    store,
		DB:       db,
		Auth:     auth.NewService(api, store, cache, nil),
		Accounts: account.NewService(api, cache),
		Cart:     cart.NewService(api),
		Catalog:  catalog.NewService(api, cache),
		Orders:   order.NewService(api),
		Reviews:  review.NewService(api),
		Reports:  report.NewService(api),
	})
	return &consoleFixture{backend: backend, store: store, router: router}
}

func (f *consoleFixture) signIn(role session.Role) {
	f.store.Set(session.KeyAccessToken, "access")
	f.store.Set(session.KeyRefreshToken, "refresh")
	f.store.SetJSON(session.KeyUser, session.Profile{ID: 1, Email: "u@example.com", Role: role})
}

func (f *consoleFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthRoutes(t *testing.T) {
	f := newConsole(t, http.NewServeMux(), nil)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/ready", nil).Code)

	degraded := newConsole(t, http.NewServeMux(), failingPinger{})
	rec := degraded.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"component":"postgres"`)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newConsole(t, http.NewServeMux(), nil)
	f.do(http.MethodGet, "/health/live", nil)

	rec := f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_console_requests_total")
}

func TestGuardRedirects(t *testing.T) {
	tests := []struct {
		name     string
		role     session.Role
		path     string
		location string
	}{
		{"guest to cart", "", "/cart", "/login"},
		{"guest to admin", "", "/admin/users", "/login"},
		{"customer to admin", session.RoleCustomer, "/admin/users", "/"},
		{"seller to admin", session.RoleSeller, "/admin/reports/revenue", "/seller/dashboard"},
		{"admin to seller", session.RoleAdmin, "/seller/orders", "/admin/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConsole(t, http.NewServeMux(), nil)
			if tt.role != "" {
				f.signIn(tt.role)
			}
			rec := f.do(http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestLoginReturnsRoleHome(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"accessToken":"a","refreshToken":"r","userId":7,"email":"s@example.com","fullName":"Sam","role":"SELLER"}}`)
	})
	f := newConsole(t, mux, nil)

	rec := f.do(http.MethodPost, "/login", map[string]string{"email": "s@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, session.SellerHome, body.Redirect)

	token, ok := f.store.Get(session.KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "a", token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid email or password"}`)
	})
	f := newConsole(t, mux, nil)

	rec := f.do(http.MethodPost, "/login", map[string]string{"email": "x@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/login", map[string]string{"email": "not-an-email", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false}`)
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"expired"}`)
	})
	f := newConsole(t, mux, nil)
	f.signIn(session.RoleCustomer)

	rec := f.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, session.LoginRoute, rec.Header().Get("Location"))

	_, ok := f.store.Get(session.KeyAccessToken)
	assert.False(t, ok)
}

func TestBackendErrorsPassThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"success":false,"message":"Order not found"}`)
	})
	f := newConsole(t, mux, nil)
	f.signIn(session.RoleCustomer)

	rec := f.do(http.MethodGet, "/orders/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order not found")
}

func TestUnreachableBackendIsBadGateway(t *testing.T) {
	f := newConsole(t, http.NewServeMux(), nil)
	f.backend.Close()
	f.signIn(session.RoleCustomer)

	rec := f.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportStreamsSpreadsheet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reports/orders/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", report.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename=orders_"+r.URL.Query().Get("month")+"_2026.xlsx")
		_, _ = w.Write([]byte("PK"))
	})
	f := newConsole(t, mux, nil)
	f.signIn(session.RoleAdmin)

	rec := f.do(http.MethodGet, "/admin/reports/orders/export?year=2026&month=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=orders_4_2026.xlsx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", rec.Body.String())

	rec = f.do(http.MethodGet, "/admin/reports/orders/export?year=2026&archive=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHomeAggregatesShelves(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/newest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1,"name":"New"}]}`)
	})
	mux.HandleFunc("GET /api/products/top-selling", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":2,"name":"Top"}]}`)
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":3,"name":"Kitchen"}]}`)
	})
	f := newConsole(t, mux, nil)

	rec := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{`"New"`, `"Top"`, `"Kitchen"`} {
		assert.True(t, strings.Contains(body, want), "missing %s in %s", want, body)
	}
}
