package artifact

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore wraps a Store with an in-process LRU so repeated reads for
// the same (user, type) pair within one process skip the database. Upserts
// write through and refresh the cache entry.
type CachedStore struct {
	inner Store
	cache *lru.Cache[cacheKey, *Generated]
}

type cacheKey struct {
	userID string
	typ    Type
}

// NewCachedStore creates a CachedStore holding at most size entries.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[cacheKey, *Generated](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact cache: %w", err)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Get serves from the LRU when possible, falling back to the inner store.
// Only hits are cached: a missing artifact is always re-checked against the
// store, since another process may have written it meanwhile.
func (c *CachedStore) Get(ctx context.Context, userID string, typ Type) (*Generated, error) {
	key := cacheKey{userID: userID, typ: typ}
	if g, ok := c.cache.Get(key); ok {
		return g, nil
	}

	g, err := c.inner.Get(ctx, userID, typ)
	if err != nil {
		return nil, err
	}
	if g != nil {
		c.cache.Add(key, g)
	}
	return g, nil
}

// Upsert writes through to the inner store and refreshes the cache entry.
// The cache is only updated after the store accepted the write.
func (c *CachedStore) Upsert(ctx context.Context, g Generated) error {
	if err := c.inner.Upsert(ctx, g); err != nil {
		return err
	}
	stored := g
	c.cache.Add(cacheKey{userID: g.UserID, typ: g.Type}, &stored)
	return nil
}
