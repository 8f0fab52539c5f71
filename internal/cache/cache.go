// Package cache stores per-file analysis results on disk, keyed by the
// file's path and validated against a BLAKE3 hash of its contents.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/panbanda/pysentry/pkg/models"
	"github.com/zeebo/blake3"
)

// Cache provides file-based caching of detector issues.
type Cache struct {
	dir     string
	ttl     time.Duration
	version string
	enabled bool
}

// Entry is the on-disk form of one cached file.
type Entry struct {
	Version   string         `json:"version"`
	Hash      string         `json:"hash"`
	Timestamp time.Time      `json:"timestamp"`
	Issues    []models.Issue `json:"issues"`
}

// New creates a cache rooted at dir. Entries older than ttlHours, or
// written by a different analyzer version, are treated as misses. A
// disabled cache never hits and never writes.
func New(dir string, ttlHours int, version string, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		version: version,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool { return c.enabled }

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Lookup returns the cached issues for path when content is unchanged.
// Expired entries are removed.
func (c *Cache) Lookup(path string, content []byte) ([]models.Issue, bool) {
	if !c.enabled {
		return nil, false
	}

	file := c.keyPath(path)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Version != c.version || entry.Hash != HashBytes(content) {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		_ = os.Remove(file)
		return nil, false
	}
	return entry.Issues, true
}

// Store records the issues found in content for path.
func (c *Cache) Store(path string, content []byte, issues []models.Issue) error {
	if !c.enabled {
		return nil
	}

	entry := Entry{
		Version:   c.version,
		Hash:      HashBytes(content),
		Timestamp: time.Now(),
		Issues:    issues,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(path), data, 0o600)
}

// Invalidate removes the entry for path. A missing entry is not an error.
func (c *Cache) Invalidate(path string) error {
	if !c.enabled {
		return nil
	}
	if err := os.Remove(c.keyPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath hashes the file path so any path maps to a flat file name.
func (c *Cache) keyPath(path string) string {
	hash := blake3.Sum256([]byte(path))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:16])+".json")
}

// Stats describes the cache directory.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats counts the entries on disk.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
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
