package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock позволяет продвигать время вручную
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	c := New(10)

	c.Set("k1", "v1", time.Minute)

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(10)
	c.SetNowFunc(clock.Now)

	c.Set("k1", "v1", time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("k1")
	assert.True(t, ok, "entry must be alive before TTL")

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k1")
	assert.False(t, ok, "entry must expire after TTL")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on Get")
}

func TestCache_FIFOEviction(t *testing.T) {
	c := New(3)

	c.Set("k1", 1, time.Hour)
	c.Set("k2", 2, time.Hour)
	c.Set("k3", 3, time.Hour)
	c.Set("k4", 4, time.Hour)

	_, ok := c.Get("k1")
	assert.False(t, ok, "oldest entry must be evicted")

	for _, key := range []string{"k2", "k3", "k4"} {
		_, ok := c.Get(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_OverwriteKeepsSize(t *testing.T) {
	c := New(2)

	c.Set("k1", 1, time.Hour)
	c.Set("k2", 2, time.Hour)
	c.Set("k1", 11, time.Hour)

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 11, got)
	assert.Equal(t, 2, c.Len())
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := New(10)

	c.Set("calls|p1", 1, time.Hour)
	c.Set("calls|p2", 2, time.Hour)
	c.Set("leads|p1", 3, time.Hour)

	c.InvalidatePrefix("calls|")

	_, ok := c.Get("calls|p1")
	assert.False(t, ok)
	_, ok = c.Get("calls|p2")
	assert.False(t, ok)
	_, ok = c.Get("leads|p1")
	assert.True(t, ok)
}

func TestCache_EvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := New(10)
	c.SetNowFunc(clock.Now)

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.EvictExpired(), "second sweep finds nothing")
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%16)
				c.Set(key, n, time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
