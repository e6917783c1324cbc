// Package credstore persists the credential pair and cached profile behind a
// total, never-failing key/value API.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ErrCorrupt is returned by backends when persisted state cannot be decoded.
var ErrCorrupt = errors.New("credential state corrupted")

// ErrLocked is returned when a sealed document does not open with the
// configured passphrase. Writes are refused until the document is cleared.
var ErrLocked = errors.New("credential state sealed with another passphrase")

// Backend is the persistence layer behind a Store. Backends report errors;
// the Store turns them into logged no-ops.
type Backend interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Remove(key string) error
	Clear() error
}

// pinger is implemented by backends with a remote dependency.
type pinger interface {
	Ping(ctx context.Context) error
}

// Store wraps a Backend and tolerates malformed values. All methods are safe to call
// with a failing backend.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// New constructs a Store. A nil logger disables logging.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger.Named("credstore")}
}

// Get returns the stored value. Missing keys, read failures, empty values and
// the serialization sentinels "undefined" and "null" all report false.
func (s *Store) Get(key string) (string, bool) {
	value, ok, err := s.backend.Load(key)
	if err != nil {
		s.logger.Warn("read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if !ok || isSentinel(value) {
		return "", false
	}
	return value, true
}

// Set persists value under key. An empty value deletes the key.
func (s *Store) Set(key, value string) {
	if value == "" {
		s.Delete(key)
		return
	}
	if err := s.backend.Save(key, value); err != nil {
		s.logger.Warn("write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes key.
func (s *Store) Delete(key string) {
	if err := s.backend.Remove(key); err != nil {
		s.logger.Warn("remove failed", zap.String("key", key), zap.Error(err))
	}
}

// GetJSON decodes the value under key into dst. It reports false when the key
// is missing or the value is not valid JSON for dst.
func (s *Store) GetJSON(key string, dst any) bool {
	value, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		s.logger.Warn("decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON encodes v under key. A nil v, including a typed nil, deletes the key.
func (s *Store) SetJSON(key string, v any) {
	if isNil(v) {
		s.Delete(key)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.Set(key, string(data))
}

// Clear removes every entry owned by this store.
func (s *Store) Clear() {
	if err := s.backend.Clear(); err != nil {
		s.logger.Warn("clear failed", zap.Error(err))
	}
}

// Check verifies the backend is reachable. Unlike the accessors it returns the
// error, for readiness probes.
func (s *Store) Check(ctx context.Context) error {
	if p, ok := s.backend.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping credential backend: %w", err)
		}
		return nil
	}
	if _, _, err := s.backend.Load("__probe__"); err != nil && !errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("probe credential backend: %w", err)
	}
	return nil
}

func isSentinel(value string) bool {
	return value == "" || value == "undefined" || value == "null"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
