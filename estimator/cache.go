package estimator

import (
	"os"
	"path/filepath"
	"sync"
)

// MemoryCache keeps depth responses in process memory. Used by tests and
// short-lived one-shot renders.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// Create an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, exists := c.entries[key]
	return data, exists
}

func (c *MemoryCache) Set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	c.entries[key] = stored
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

// DirCache persists depth responses as files under a directory so
// repeated sessions on the same image skip the depth service entirely.
type DirCache struct {
	dir string
}

// Create a directory-backed cache rooted at dir.
func NewDirCache(dir string) (*DirCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirCache{dir: dir}, nil
}

func (c *DirCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *DirCache) Set(key string, data []byte) error {
	return os.WriteFile(c.path(key), data, 0644)
}

func (c *DirCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".depth" {
			continue
		}
		if err = os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *DirCache) path(key string) string {
	return filepath.Join(c.dir, key+".depth")
}
