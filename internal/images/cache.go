// Package images resolves a working image URL for every listing through
// an ordered fallback chain, backed by a TTL cache of probe results so
// repeated builds avoid redundant network calls.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
)

// CacheEntry records one validation verdict for an image URL.
type CacheEntry struct {
	Valid     bool      `json:"isValid"`
	CheckedAt time.Time `json:"timestamp"`
}

// Store is the durable layer behind the in-memory cache. Implementations
// must tolerate concurrent calls.
type Store interface {
	Get(key string) (CacheEntry, bool, error)
	Put(key string, entry CacheEntry) error
	Clear() error
}

// CacheKey hashes an image URL into the cache key form.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Cache memoizes probe verdicts with a TTL. An in-memory map fronts the
// durable store; entries older than the TTL are treated as absent.
// Store writes are best-effort and never fail a lookup or record.
type Cache struct {
	store  Store
	ttl    time.Duration
	clock  directory.Clock
	logger *zap.Logger

	mem *MemoryStore
}

// NewCache builds a Cache. store may be nil for a purely in-memory cache.
func NewCache(store Store, ttl time.Duration, clock directory.Clock, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		clock:  clock,
		logger: logger,
		mem:    NewMemoryStore(),
	}
}

// Lookup returns the cached verdict for url and whether a fresh entry
// existed. Stale entries are ignored.
func (c *Cache) Lookup(url string) (valid bool, ok bool) {
	key := CacheKey(url)
	if entry, found, _ := c.mem.Get(key); found && c.fresh(entry) {
		return entry.Valid, true
	}
	if c.store == nil {
		return false, false
	}
	entry, found, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("image cache read failed", zap.String("key", key), zap.Error(err))
		return false, false
	}
	if !found || !c.fresh(entry) {
		return false, false
	}
	_ = c.mem.Put(key, entry)
	return entry.Valid, true
}

// Record stores a probe verdict in both layers. A durable-store failure
// is logged as a warning; resolution must not fail over cache persistence.
func (c *Cache) Record(url string, valid bool) {
	key := CacheKey(url)
	entry := CacheEntry{Valid: valid, CheckedAt: c.clock.Now()}
	_ = c.mem.Put(key, entry)
	if c.store == nil {
		return
	}
	if err := c.store.Put(key, entry); err != nil {
		c.logger.Warn("image cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear wipes both layers. Used by the cache-clear maintenance path.
func (c *Cache) Clear() error {
	_ = c.mem.Clear()
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

func (c *Cache) fresh(entry CacheEntry) bool {
	return c.clock.Now().Sub(entry.CheckedAt) < c.ttl
}
