// Package gateway is the single outbound pipeline to the backend REST API. It
// attaches the stored bearer token, refreshes it once on a 401 and replays the
// request, and steers navigation on role-namespace 403s.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/logger"
	"github.com/abduss/storefront/internal/metrics"
	"github.com/abduss/storefront/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath           = "/auth/refresh-token"
	maxResponseSize       = 32 << 20
	defaultRefreshTimeout = 30 * time.Second
)

// CredentialStore is the part of the credential store the gateway uses.
type CredentialStore interface {
	Get(key string) (string, bool)
	GetJSON(key string, dst any) bool
	Set(key, value string)
	Clear()
}

// Request describes one backend call. Path is relative to the base URL and may
// carry its own query string. Body is JSON-encoded unless it is []byte.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

// pending is a request in flight. The body is encoded once so the request can
// be replayed after a refresh.
type pending struct {
	req     *Request
	body    []byte
	retried bool
}

// Client dispatches requests to the backend.
type Client struct {
	baseURL  string
	http     *http.Client
	store    CredentialStore
	nav      Navigator
	logger   *zap.Logger
	coalesce bool
	group    singleflight.Group

	refreshTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithNavigator sets the navigator used for advisory and forced redirects.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.nav = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefreshCoalescing makes concurrent 401s share a single in-flight
// refresh. Without it every 401 refreshes independently.
func WithRefreshCoalescing(enabled bool) Option {
	return func(c *Client) {
		c.coalesce = enabled
	}
}

// New constructs a Client for cfg.BaseURL.
func New(cfg config.APIConfig, store CredentialStore, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultAPIBaseURL
	}
	c := &Client{
		baseURL:  base,
		http:     &http.Client{Timeout: cfg.Timeout},
		store:    store,
		nav:      NopNavigator{},
		logger:   zap.NewNop(),
		coalesce: cfg.CoalesceRefresh,

		refreshTimeout: cfg.Timeout,
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = defaultRefreshTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("gateway")
	return c
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req. A 401 triggers at most one refresh-and-replay cycle; a failed
// refresh clears the store, redirects to the login route and returns an error
// matching ErrSessionExpired. A refresh cut short by ctx returns
// ErrRefreshAbandoned and keeps the session. Any other non-2xx status returns
// *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	p := &pending{req: req}
	if req.Body != nil {
		switch body := req.Body.(type) {
		case []byte:
			p.body = body
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request body: %w", err)
			}
			p.body = data
		}
	}
	return c.dispatch(ctx, p)
}

func (c *Client) dispatch(ctx context.Context, p *pending) (*Response, error) {
	resp, err := c.send(ctx, p)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Status == http.StatusForbidden:
		c.adviseForbidden(p.req.Path)
		return nil, newAPIError(resp)

	case resp.Status == http.StatusUnauthorized:
		if p.retried {
			return nil, newAPIError(resp)
		}
		p.retried = true
		if err := c.refresh(ctx); err != nil {
			if errors.Is(err, ErrRefreshAbandoned) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return c.dispatch(ctx, p)

	case resp.Status >= http.StatusBadRequest:
		return nil, newAPIError(resp)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, p *pending) (*Response, error) {
	target, err := c.resolve(p.req.Path, p.req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	method := p.req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range p.req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if p.body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.store.Get(session.KeyAccessToken); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(logger.CorrelationIDHeader, id)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	metrics.GatewayDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(method, "network_error").Inc()
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", p.req.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(method, "network_error").Inc()
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	metrics.GatewayRequests.WithLabelValues(method, outcome(httpResp.StatusCode)).Inc()
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", p.req.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Bool("retried", p.retried),
		zap.Duration("latency", time.Since(start)),
	)
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		raw = c.baseURL + path
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse request url %q: %w", raw, err)
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

// adviseForbidden sends the user home when a 403 hit a role namespace the
// cached role does not own. The backend's 403 remains the enforcement.
func (c *Client) adviseForbidden(path string) {
	role := session.RoleGuest
	var profile session.Profile
	if c.store.GetJSON(session.KeyUser, &profile) && profile.Role != "" {
		role = session.ParseRole(string(profile.Role))
	}

	var ns string
	switch {
	case role != session.RoleAdmin && strings.Contains(path, "/admin/"):
		ns = "admin"
	case role != session.RoleSeller && strings.Contains(path, "/seller/"):
		ns = "seller"
	default:
		c.logger.Info("access denied", zap.String("role", string(role)), zap.String("path", path))
		return
	}

	c.logger.Warn("access denied on role namespace, navigating home",
		zap.String("role", string(role)),
		zap.String("path", path),
		zap.String("namespace", ns),
	)
	metrics.AdvisoryRedirects.WithLabelValues(ns).Inc()
	c.nav.Navigate(session.HomeRoute)
}

// refresh runs a token refresh for one caller. A shared flight is detached
// from the caller that started it and bounded by the client timeout. Each
// waiter stops waiting when its own ctx ends.
func (c *Client) refresh(ctx context.Context) error {
	if !c.coalesce {
		return c.refreshOrLogout(ctx)
	}
	ch := c.group.DoChan("refresh", func() (any, error) {
		flight, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return nil, c.refreshOrLogout(flight)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrRefreshAbandoned, ctx.Err())
	}
}

func (c *Client) refreshOrLogout(ctx context.Context) error {
	err := c.refreshToken(ctx)
	if err == nil {
		metrics.TokenRefreshes.WithLabelValues("success").Inc()
		return nil
	}
	if ctx.Err() != nil {
		metrics.TokenRefreshes.WithLabelValues("abandoned").Inc()
		c.logger.Info("token refresh abandoned, keeping session", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrRefreshAbandoned, err)
	}
	metrics.TokenRefreshes.WithLabelValues("failure").Inc()
	c.forceLogout(err)
	return err
}

type refreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshToken exchanges the stored refresh token for a new access token. It
// talks to the transport directly so a 401 here cannot recurse.
func (c *Client) refreshToken(ctx context.Context) error {
	token, ok := c.store.Get(session.KeyRefreshToken)
	if !ok {
		return errNoRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": token})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(logger.CorrelationIDHeader, id)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: refresh: %w", ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read refresh response: %w", ErrNetwork, err)
	}
	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}
	if resp.Status < 200 || resp.Status > 299 {
		return newAPIError(resp)
	}

	var result refreshResult
	if err := resp.Decode(&result); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("refresh response carried no access token")
	}

	c.store.Set(session.KeyAccessToken, result.AccessToken)
	if result.RefreshToken != "" {
		c.store.Set(session.KeyRefreshToken, result.RefreshToken)
	}
	c.logger.Debug("access token refreshed")
	return nil
}

func (c *Client) forceLogout(cause error) {
	c.logger.Warn("token refresh failed, clearing session", zap.Error(cause))
	metrics.ForcedLogouts.Inc()
	c.store.Clear()
	c.nav.Redirect(session.LoginRoute)
}

func outcome(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "success"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status >= 400 && status < 500:
		return "client_error"
	case status >= 500:
		return "server_error"
	}
	return "other"
}
