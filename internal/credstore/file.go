package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores all entries in a single JSON document so credentials
// survive process restarts.
type FileBackend struct {
	path   string
	mu     sync.Mutex
	sealer *sealer
}

// FileOption configures a FileBackend.
type FileOption func(*FileBackend)

// WithPassphrase seals the document at rest with a key derived from passphrase.
// An empty passphrase leaves the document in plain JSON.
func WithPassphrase(passphrase string) FileOption {
	return func(b *FileBackend) {
		if passphrase != "" {
			b.sealer = newSealer(passphrase)
		}
	}
}

// NewFileBackend returns a backend persisting to path.
func NewFileBackend(path string, opts ...FileOption) *FileBackend {
	b := &FileBackend{path: path}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *FileBackend) Load(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (b *FileBackend) Save(key, value string) error {
	return b.update(func(entries map[string]string) {
		entries[key] = value
	})
}

func (b *FileBackend) Remove(key string) error {
	return b.update(func(entries map[string]string) {
		delete(entries, key)
	})
}

func (b *FileBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

// update rewrites the document. A corrupted document is replaced; a locked
// one is left alone.
func (b *FileBackend) update(mutate func(map[string]string)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		entries = make(map[string]string)
	}
	mutate(entries)
	return b.write(entries)
}

func (b *FileBackend) read() (map[string]string, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	if b.sealer != nil {
		raw, err = b.sealer.open(raw)
		if errors.Is(err, errWrongPassphrase) {
			return nil, fmt.Errorf("%w: %v", ErrLocked, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	entries := make(map[string]string)
	if len(raw) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}

func (b *FileBackend) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if b.sealer != nil {
		data, err = b.sealer.seal(data)
		if err != nil {
			return fmt.Errorf("seal credential file: %w", err)
		}
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
