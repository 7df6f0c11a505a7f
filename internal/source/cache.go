package source

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores fetched CSV tables on disk, keyed by table name, with a
// freshness TTL
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a cache rooted at dir. A zero TTL means cached files
// are never considered fresh.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

// Read returns the cached bytes for key and whether they are within the
// TTL. A missing file returns (nil, false, nil).
func (c *Cache) Read(key string) ([]byte, bool, error) {
	path := c.path(key)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat cache file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	fresh := c.ttl > 0 && time.Since(info.ModTime()) < c.ttl
	return data, fresh, nil
}

// Write stores data under key, creating the cache directory as needed
func (c *Cache) Write(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Age returns how old the cached entry for key is, or false when absent
func (c *Cache) Age(key string) (time.Duration, bool) {
	info, err := os.Stat(c.path(key))
	if err != nil {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".csv")
}
