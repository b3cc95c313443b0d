package images

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}
}

// failingStore simulates a broken durable layer.
type failingStore struct{}

func (failingStore) Get(string) (CacheEntry, bool, error) {
	return CacheEntry{}, false, errors.New("disk on fire")
}
func (failingStore) Put(string, CacheEntry) error { return errors.New("disk on fire") }
func (failingStore) Clear() error                 { return errors.New("disk on fire") }

// TestCacheRecordAndLookup verifies the basic memoization path.
func TestCacheRecordAndLookup(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(NewMemoryStore(), time.Hour, clk, zap.NewNop())

	_, ok := cache.Lookup("https://img.example.com/a.jpg")
	require.False(t, ok)

	cache.Record("https://img.example.com/a.jpg", true)
	valid, ok := cache.Lookup("https://img.example.com/a.jpg")
	require.True(t, ok)
	assert.True(t, valid)

	cache.Record("https://img.example.com/b.jpg", false)
	valid, ok = cache.Lookup("https://img.example.com/b.jpg")
	require.True(t, ok)
	assert.False(t, valid)
}

// TestCacheTTLExpiry checks entries older than the TTL act as absent.
func TestCacheTTLExpiry(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(NewMemoryStore(), 24*time.Hour, clk, zap.NewNop())

	cache.Record("https://img.example.com/a.jpg", true)
	clk.Advance(23 * time.Hour)
	_, ok := cache.Lookup("https://img.example.com/a.jpg")
	assert.True(t, ok, "entry inside TTL should be served")

	clk.Advance(2 * time.Hour)
	_, ok = cache.Lookup("https://img.example.com/a.jpg")
	assert.False(t, ok, "entry past TTL must be treated as absent")
}

// TestCacheDurableLayerSurvivesNewCache verifies verdicts persist across
// cache instances via the fs store, as they must across build runs.
func TestCacheDurableLayerSurvivesNewCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFSStore(dir)
	require.NoError(t, err)
	clk := newFakeClock()

	first := NewCache(store, time.Hour, clk, zap.NewNop())
	first.Record("https://img.example.com/a.jpg", true)

	second := NewCache(store, time.Hour, clk, zap.NewNop())
	valid, ok := second.Lookup("https://img.example.com/a.jpg")
	require.True(t, ok)
	assert.True(t, valid)
}

// TestCacheBestEffortPersistence ensures a broken store never breaks the
// in-memory layer or the caller.
func TestCacheBestEffortPersistence(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(failingStore{}, time.Hour, clk, zap.NewNop())

	cache.Record("https://img.example.com/a.jpg", true)
	valid, ok := cache.Lookup("https://img.example.com/a.jpg")
	require.True(t, ok, "memory layer must still serve the verdict")
	assert.True(t, valid)
}

// TestFSStoreClear wipes all persisted entries.
func TestFSStoreClear(t *testing.T) {
	t.Parallel()

	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(CacheKey("u1"), CacheEntry{Valid: true}))
	require.NoError(t, store.Put(CacheKey("u2"), CacheEntry{Valid: false}))
	require.NoError(t, store.Clear())

	_, found, err := store.Get(CacheKey("u1"))
	require.NoError(t, err)
	assert.False(t, found)
}

// TestCacheKeyStable pins the key derivation.
func TestCacheKeyStable(t *testing.T) {
	t.Parallel()

	a := CacheKey("https://img.example.com/a.jpg")
	b := CacheKey("https://img.example.com/a.jpg")
	c := CacheKey("https://img.example.com/b.jpg")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
