package valentine

import (
	"context"
	"sync"
	"time"

	"github.com/valentine/backend/internal/models"
)

type cacheEntry struct {
	valentine models.Valentine
	expires   time.Time
}

// CachingResolver wraps another Resolver with a TTL-based in-memory cache.
// Valentines are immutable once created, so repeated redemptions of the same
// code within the TTL can skip the store entirely. Misses and failures are
// never cached.
type CachingResolver struct {
	base Resolver
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingResolver returns a Resolver that caches hits for the provided TTL.
func NewCachingResolver(base Resolver, ttl time.Duration) *CachingResolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingResolver{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// Resolve returns a cached valentine when available, otherwise it delegates
// to the underlying resolver and stores the result.
func (c *CachingResolver) Resolve(ctx context.Context, code string) (models.Valentine, error) {
	key := NormalizeCode(code)
	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.valentine, nil
	}

	valentine, err := c.base.Resolve(ctx, code)
	if err != nil {
		return models.Valentine{}, err
	}

	c.mu.Lock()
	// Sweep on write so entries for codes never redeemed again still expire.
	for k, e := range c.items {
		if !now.Before(e.expires) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheEntry{valentine: valentine, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return valentine, nil
}

var _ Resolver = (*CachingResolver)(nil)
