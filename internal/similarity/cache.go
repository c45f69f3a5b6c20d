package similarity

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/shipsy/feedback-assistant/internal/store"
)

// Cache interface for embedding vectors keyed by input text.
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, value []float32, ttl time.Duration)
}

type CacheConfig struct {
	Type      string // "store", "memory", "noop"
	KeyPrefix string
	MaxSize   int
	TTL       time.Duration
}

// StoreCache keeps embeddings in the TTL store as packed little-endian
// float32 values.
type StoreCache struct {
	store  store.Store
	prefix string
	ttl    time.Duration
}

func NewStoreCache(s store.Store, prefix string, ttl time.Duration) *StoreCache {
	return &StoreCache{store: s, prefix: prefix, ttl: ttl}
}

func (c *StoreCache) Get(key string) ([]float32, bool) {
	data, err := c.store.GetString(context.Background(), c.prefix+key)
	if err != nil {
		return nil, false
	}

	raw := []byte(data)
	embedding := make([]float32, len(raw)/4)
	for i := range embedding {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		embedding[i] = math.Float32frombits(bits)
	}

	return embedding, true
}

func (c *StoreCache) Set(key string, value []float32, ttl time.Duration) {
	data := make([]byte, len(value)*4)
	for i, f := range value {
		bits := math.Float32bits(f)
		binary.LittleEndian.PutUint32(data[i*4:], bits)
	}

	if ttl == 0 {
		ttl = c.ttl
	}

	_ = c.store.SetString(context.Background(), c.prefix+key, string(data), ttl)
}

// MemoryCache is an in-process LRU cache, no store round-trip required.
type MemoryCache struct {
	cache *lru.Cache
	ttl   time.Duration
	mu    sync.RWMutex
}

type cacheEntry struct {
	value     []float32
	expiresAt time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) (*MemoryCache, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}

	return &MemoryCache{
		cache: cache,
		ttl:   ttl,
	}, nil
}

func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	entry := val.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}

	return entry.value, true
}

func (c *MemoryCache) Set(key string, value []float32, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.ttl
	}

	c.cache.Add(key, cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
}

// NoopCache disables caching.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(key string) ([]float32, bool) {
	return nil, false
}

func (c *NoopCache) Set(key string, value []float32, ttl time.Duration) {
}

// NewCache builds a cache from config. The "store" type needs the shared
// TTL store handle.
func NewCache(config CacheConfig, s store.Store) (Cache, error) {
	switch config.Type {
	case "store":
		if s == nil {
			return nil, fmt.Errorf("store cache requires a store handle")
		}
		return NewStoreCache(s, config.KeyPrefix, config.TTL), nil
	case "memory":
		return NewMemoryCache(config.MaxSize, config.TTL)
	case "noop":
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", config.Type)
	}
}
