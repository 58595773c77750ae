package status

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds ListRecent results keyed by limit. Cached slices are shared
// between readers and must not be mutated.
//
// Every Invalidate advances the cache generation. A reader takes the
// generation before querying the store and passes it back to Set, which
// drops the result if an insert invalidated the cache in between. That keeps
// a slow read from caching a snapshot older than a completed write.
type Cache interface {
	Get(ctx context.Context, limit int) ([]*StatusCheck, bool)
	// Generation reports the current generation. ok is false when it could
	// not be read, in which case the caller must not Set.
	Generation(ctx context.Context) (gen uint64, ok bool)
	// Set stores checks only if gen is still the current generation
	Set(ctx context.Context, gen uint64, limit int, checks []*StatusCheck)
	// Invalidate drops every cached result and advances the generation.
	// Called after each successful insert.
	Invalidate(ctx context.Context)
	Close() error
}

type noopCache struct {
	gen atomic.Uint64
}

func (*noopCache) Get(context.Context, int) ([]*StatusCheck, bool)  { return nil, false }
func (c *noopCache) Generation(context.Context) (uint64, bool)      { return c.gen.Load(), true }
func (*noopCache) Set(context.Context, uint64, int, []*StatusCheck) {}
func (c *noopCache) Invalidate(context.Context)                     { c.gen.Add(1) }
func (*noopCache) Close() error                                     { return nil }

// NoopCache never stores anything. It still tracks generations so
// concurrent reads are not coalesced across a write.
func NoopCache() Cache {
	return &noopCache{}
}

// MemoryCache is an in-process expiring LRU
type MemoryCache struct {
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[int, []*StatusCheck]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		lru: expirable.NewLRU[int, []*StatusCheck](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, limit int) ([]*StatusCheck, bool) {
	return c.lru.Get(limit)
}

func (c *MemoryCache) Generation(context.Context) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, true
}

func (c *MemoryCache) Set(_ context.Context, gen uint64, limit int, checks []*StatusCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.lru.Add(limit, checks)
}

func (c *MemoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
