// Package cache provides file-based caching of audit results keyed by
// content hashes, so repeated audits of unchanged inputs are free.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/fairlens/fairlens/pkg/config"
)

// Cache is a TTL'd on-disk store. A disabled cache is a usable no-op.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

type entry struct {
	Checksum  string    `json:"checksum,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache from the cache section of a loaded config.
func New(cfg config.CacheConfig) (*Cache, error) {
	if !cfg.Enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", cfg.Dir, err)
	}
	return &Cache{
		dir:     cfg.Dir,
		ttl:     time.Duration(cfg.TTL) * time.Hour,
		enabled: true,
	}, nil
}

// HashBytes computes a BLAKE3 hash of bytes as a hex string. Used both
// for cache keys and for input checksums.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached entry if present and not expired. When
// checksum is non-empty the stored checksum must match too.
func (c *Cache) Get(key, checksum string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if checksum != "" && e.Checksum != checksum {
		return nil, false
	}
	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}
	return e.Data, true
}

// Set stores data under key. A non-empty checksum is stored alongside
// and validated on Get.
func (c *Cache) Set(key, checksum string, data []byte) error {
	if !c.enabled {
		return nil
	}
	raw, err := json.Marshal(entry{
		Checksum:  checksum,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), raw, 0o600)
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes the whole cache directory.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats walks the cache directory and counts entries.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.enabled {
		return stats, nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// keyPath hashes the key into a filename to avoid path issues.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, HashBytes([]byte(key))+".json")
}
