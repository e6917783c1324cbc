// Package apicache is a process-local TTL cache for backend GET responses.
package apicache

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// TTL presets.
const (
	Short    = time.Minute
	Medium   = 5 * time.Minute
	Long     = 15 * time.Minute
	VeryLong = time.Hour
)

type entry struct {
	data   []byte
	expiry time.Time
	stored time.Time
}

// Cache holds JSON-encoded values keyed by endpoint and parameters. A nil
// *Cache is valid and caches nothing.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL changes the TTL used by Set.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty cache with a Medium default TTL.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: Medium,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a cache key from endpoint and params sorted by name.
func Key(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint + "?"
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[name], ","))
	}
	return b.String()
}

// Get returns the cached bytes. Expired entries are evicted.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiry) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Has reports whether key holds an unexpired value.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores data with the default TTL.
func (c *Cache) Set(key string, data []byte) {
	if c == nil {
		return
	}
	c.SetTTL(key, data, c.defaultTTL)
}

// SetTTL stores data for ttl.
func (c *Cache) SetTTL(key string, data []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry{data: data, expiry: now.Add(ttl), stored: now}
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePattern drops every key containing pattern.
func (c *Cache) InvalidatePattern(pattern string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Stats describes the cache contents.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Stats returns the current keys in sorted order, expired ones included.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}

// Fetch returns the cached value for key, or calls load and caches its result
// for ttl. Values round-trip through JSON so callers never share memory with
// the cache.
func Fetch[T any](c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if data, ok := c.Get(key); ok {
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		c.Invalidate(key)
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if c == nil {
		return out, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	c.SetTTL(key, data, ttl)
	return out, nil
}
