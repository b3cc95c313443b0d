package images

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSStore persists cache entries as one small JSON file per URL hash
// under a cache directory, so verdicts survive across build runs.
type FSStore struct {
	dir string
	mu  sync.Mutex
}

// NewFSStore creates the cache directory if needed and returns the store.
func NewFSStore(dir string) (*FSStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

// Get implements Store.
func (s *FSStore) Get(key string) (CacheEntry, bool, error) {
	data, err := os.ReadFile(s.path(key)) //nolint:gosec // key is a hex digest
	if err != nil {
		if os.IsNotExist(err) {
			return CacheEntry{}, false, nil
		}
		return CacheEntry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is the same as a missing one; it will be
		// overwritten on the next probe.
		return CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Put implements Store.
func (s *FSStore) Put(key string, entry CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry file in the cache directory.
func (s *FSStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cache entry %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
