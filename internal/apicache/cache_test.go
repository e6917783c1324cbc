package apicache

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time           { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestKeySortsParams(t *testing.T) {
	params := url.Values{}
	params.Set("size", "12")
	params.Set("page", "0")
	params.Set("sortDir", "desc")

	assert.Equal(t, "/products?page=0&size=12&sortDir=desc", Key("/products", params))
	assert.Equal(t, "/categories?", Key("/categories", nil))
}

func TestEntriesExpire(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := New(WithClock(clock.Now))

	c.SetTTL("/products/1", []byte(`{"id":1}`), Short)
	assert.True(t, c.Has("/products/1"))

	clock.Advance(Short + time.Second)
	_, ok := c.Get("/products/1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size, "expired entry should be evicted on read")
}

func TestDefaultTTLIsMedium(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := New(WithClock(clock.Now))
	c.Set("k", []byte("1"))

	clock.Advance(Medium - time.Second)
	assert.True(t, c.Has("k"))
	clock.Advance(2 * time.Second)
	assert.False(t, c.Has("k"))
}

func TestInvalidatePattern(t *testing.T) {
	c := New()
	c.Set("/products?page=0", []byte("1"))
	c.Set("/products/5", []byte("1"))
	c.Set("/categories?", []byte("1"))

	c.InvalidatePattern("/products")

	assert.Equal(t, Stats{Size: 1, Keys: []string{"/categories?"}}, c.Stats())

	c.Invalidate("/categories?")
	assert.Equal(t, 0, c.Stats().Size)
}

func TestFetchLoadsOnce(t *testing.T) {
	c := New()
	calls := 0
	load := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	first, err := Fetch(c, "/products/newest?", Medium, load)
	require.NoError(t, err)
	second, err := Fetch(c, "/products/newest?", Medium, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	_, err := Fetch(c, "k", Medium, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Has("k"))
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Fetch(c, "k", Medium, func() (string, error) {
			calls++
			return "v", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	c.Clear()
	c.InvalidatePattern("k")
}
