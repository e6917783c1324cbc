package credstore

import (
	"context"
	"errors"
	"testing"
)

func TestGetAfterSet(t *testing.T) {
	store := New(NewMemoryBackend(), nil)

	store.Set("accessToken", "abc")
	got, ok := store.Get("accessToken")
	if !ok || got != "abc" {
		t.Fatalf("expected abc, got %q (ok=%v)", got, ok)
	}

	store.Set("accessToken", "")
	if _, ok := store.Get("accessToken"); ok {
		t.Fatalf("expected key deleted after empty set")
	}
}

func TestGetFiltersSentinels(t *testing.T) {
	backend := NewMemoryBackend()
	store := New(backend, nil)

	for _, sentinel := range []string{"undefined", "null"} {
		_ = backend.Save("refreshToken", sentinel)
		if v, ok := store.Get("refreshToken"); ok {
			t.Fatalf("expected sentinel %q to read as absent, got %q", sentinel, v)
		}
	}
}

type profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func TestJSONRoundTrip(t *testing.T) {
	store := New(NewMemoryBackend(), nil)
	in := profile{ID: 42, Email: "seller@example.com", Role: "SELLER"}

	store.SetJSON("user", in)

	var out profile
	if !store.GetJSON("user", &out) {
		t.Fatalf("expected profile to decode")
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestGetJSONRejectsInvalidData(t *testing.T) {
	store := New(NewMemoryBackend(), nil)
	store.Set("user", "not-json")

	var out profile
	if store.GetJSON("user", &out) {
		t.Fatalf("expected invalid json to report false")
	}
}

func TestSetJSONNilDeletes(t *testing.T) {
	backend := NewMemoryBackend()
	store := New(backend, nil)
	store.SetJSON("user", profile{ID: 1})

	var p *profile
	store.SetJSON("user", p)

	if backend.Len() != 0 {
		t.Fatalf("expected typed nil to delete key, %d entries left", backend.Len())
	}

	store.SetJSON("user", profile{ID: 1})
	store.SetJSON("user", nil)
	if backend.Len() != 0 {
		t.Fatalf("expected nil to delete key")
	}
}

func TestSetJSONUnencodableIsNoop(t *testing.T) {
	backend := NewMemoryBackend()
	store := New(backend, nil)

	store.SetJSON("user", map[string]any{"ch": make(chan int)})

	if backend.Len() != 0 {
		t.Fatalf("expected nothing written for unencodable value")
	}
}

func TestClear(t *testing.T) {
	backend := NewMemoryBackend()
	store := New(backend, nil)
	store.Set("accessToken", "a")
	store.Set("refreshToken", "r")
	store.SetJSON("user", profile{ID: 1})

	store.Clear()

	if backend.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d entries", backend.Len())
	}
}

type failingBackend struct{}

var errBroken = errors.New("disk on fire")

func (failingBackend) Load(string) (string, bool, error) { return "", false, errBroken }
func (failingBackend) Save(string, string) error         { return errBroken }
func (failingBackend) Remove(string) error               { return errBroken }
func (failingBackend) Clear() error                      { return errBroken }

func TestFailingBackendDegrades(t *testing.T) {
	store := New(failingBackend{}, nil)

	store.Set("accessToken", "a")
	store.SetJSON("user", profile{ID: 1})
	store.Delete("accessToken")
	store.Clear()

	if _, ok := store.Get("accessToken"); ok {
		t.Fatalf("expected read failure to report absent")
	}
	var p profile
	if store.GetJSON("user", &p) {
		t.Fatalf("expected read failure to report absent")
	}
	if err := store.Check(context.Background()); !errors.Is(err, errBroken) {
		t.Fatalf("expected Check to surface backend error, got %v", err)
	}
}
