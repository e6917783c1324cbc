package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, backend string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("STOREFRONT_STORE_DRIVER", "memory")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api-url", backend + "/api", "--store", "memory"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"accessToken":"a","refreshToken":"r","userId":1,"email":"admin@example.com","role":"ADMIN"}}`))
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"content":[{"id":4,"name":"Teapot","price":19.9,"stockQuantity":2}],"totalElements":1,"totalPages":1,"number":0}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	srv := fakeBackend(t)
	out, _, err := run(t, srv.URL, "secret\n", "login", "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in as admin@example.com (ADMIN), home /admin/dashboard")
}

func TestOpenRedirectsGuestToLogin(t *testing.T) {
	srv := fakeBackend(t)
	out, _, err := run(t, srv.URL, "", "open", "/admin/users")
	require.NoError(t, err)
	assert.Equal(t, "redirect /login\n", out)

	_, _, err = run(t, srv.URL, "", "open", "/nowhere")
	assert.Error(t, err)
}

func TestProductsList(t *testing.T) {
	srv := fakeBackend(t)
	out, _, err := run(t, srv.URL, "", "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Teapot")
	assert.Contains(t, out, "page 1/1, 1 products")
}

func TestStatusListsRoutes(t *testing.T) {
	srv := fakeBackend(t)
	out, _, err := run(t, srv.URL, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated: false")
	assert.Contains(t, out, "role:          GUEST")
	assert.Contains(t, out, "/cart")
}
