package permission

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache memoizes effective permission sets keyed by (userID, workspaceID).
//
// The cache is an optimization only: the resolver behaves identically with
// NopCache. Explicit Invalidate from the membership-mutation path is the
// correctness mechanism — a demoted admin loses permissions on the very next
// request, not after a TTL elapses. TTLs on implementations exist only to
// bound memory.
//
// All mutation goes through Set/Invalidate with whole values, never partial
// updates, so readers see either a fully-valid entry or a miss.
type Cache interface {
	Get(ctx context.Context, userID, workspaceID string) (Set, bool)
	Set(ctx context.Context, userID, workspaceID string, perms Set)
	Invalidate(ctx context.Context, userID, workspaceID string)
}

func cacheKey(userID, workspaceID string) string {
	return userID + "/" + workspaceID
}

// MemoryCache is the in-process Cache implementation, backed by ttlcache.
type MemoryCache struct {
	cache *ttlcache.Cache[string, Set]
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
// Call Stop when the process shuts down.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := ttlcache.New(
		ttlcache.WithTTL[string, Set](ttl),
		ttlcache.WithDisableTouchOnHit[string, Set](),
	)

	// Background expiry cleanup; lives for the process lifetime.
	go c.Start()

	return &MemoryCache{cache: c}
}

func (m *MemoryCache) Get(_ context.Context, userID, workspaceID string) (Set, bool) {
	item := m.cache.Get(cacheKey(userID, workspaceID))
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (m *MemoryCache) Set(_ context.Context, userID, workspaceID string, perms Set) {
	m.cache.Set(cacheKey(userID, workspaceID), perms, ttlcache.DefaultTTL)
}

func (m *MemoryCache) Invalidate(_ context.Context, userID, workspaceID string) {
	m.cache.Delete(cacheKey(userID, workspaceID))
}

func (m *MemoryCache) Stop() {
	m.cache.Stop()
}

// NopCache disables memoization. Useful in tests and as the reference
// behavior the cached path must match.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) (Set, bool) { return nil, false }
func (NopCache) Set(context.Context, string, string, Set)        {}
func (NopCache) Invalidate(context.Context, string, string)      {}
