package publish

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRegistry memoizes positive lookups. A publish is never withdrawn, so
// a cached "published" stays true; misses always go to the backing registry.
type CachedRegistry struct {
	next  Registry
	cache *lru.Cache[string, struct{}]
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Registry, size int) (*CachedRegistry, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &CachedRegistry{next: next, cache: cache}, nil
}

func cacheKey(projectID, code string) string {
	return projectID + "\x00" + code
}

// IsPublished answers from the cache or the backing registry.
func (c *CachedRegistry) IsPublished(ctx context.Context, projectID, code string) (bool, error) {
	key := cacheKey(projectID, code)
	if c.cache.Contains(key) {
		return true, nil
	}
	published, err := c.next.IsPublished(ctx, projectID, code)
	if err != nil {
		return false, err
	}
	if published {
		c.cache.Add(key, struct{}{})
	}
	return published, nil
}

// Record forwards to the backing registry when it supports recording.
func (c *CachedRegistry) Record(ctx context.Context, projectID, code string) error {
	rec, ok := c.next.(Recorder)
	if !ok {
		return errRecordUnsupported
	}
	if err := rec.Record(ctx, projectID, code); err != nil {
		return err
	}
	c.cache.Add(cacheKey(projectID, code), struct{}{})
	return nil
}

// Len reports how many lookups are cached.
func (c *CachedRegistry) Len() int {
	return c.cache.Len()
}
