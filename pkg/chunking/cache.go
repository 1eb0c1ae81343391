package chunking

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when NewCache is given a non-positive size.
const DefaultCacheSize = 64

type cacheKey struct {
	strategy  string
	chunkSize int
	overlap   int
}

// Cache holds recently used chunkers keyed by configuration. It is bounded and
// evicts the least recently used entry, so arbitrary request parameters cannot
// grow it without limit. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, ChunkingClient]
}

// NewCache creates a new Cache holding up to size chunkers.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, ChunkingClient](size)
	if err != nil {
		return nil, fmt.Errorf("init chunker cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Get returns the chunker for cfg, building and caching it on a miss.
// Invalid configurations are rejected and never cached.
func (c *Cache) Get(cfg Config) (ChunkingClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := cacheKey{strategy: cfg.strategy(), chunkSize: cfg.ChunkSize, overlap: cfg.Overlap}
	if client, ok := c.entries.Get(key); ok {
		return client, nil
	}

	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, client)
	return client, nil
}

// Len reports the number of cached chunkers.
func (c *Cache) Len() int {
	return c.entries.Len()
}
