// ABOUTME: Render cache that wraps a rendering function with sha256-keyed caching on go-cache.
// ABOUTME: Supports TTL-based expiry, concurrent access, and manual cache clearing.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RenderFunc is the signature for a rendering function that the cache wraps.
type RenderFunc func(ctx context.Context, raw []byte, mode Mode, opts Options) ([]byte, error)

// Cache wraps a rendering function with an in-memory cache. Keys are derived
// from the sha256 of the document bytes combined with the mode and options.
// Entries expire after the configured TTL.
type Cache struct {
	renderFn RenderFunc
	entries  *gocache.Cache
}

// NewCache creates a Cache wrapping renderFn. A nil renderFn uses Render.
// Expired entries are purged every ttl.
func NewCache(renderFn RenderFunc, ttl time.Duration) *Cache {
	if renderFn == nil {
		renderFn = Render
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		renderFn: renderFn,
		entries:  gocache.New(ttl, ttl),
	}
}

// Render returns cached output when available and not expired. Errors are never
// cached.
func (c *Cache) Render(ctx context.Context, raw []byte, mode Mode, opts Options) ([]byte, error) {
	key := cacheKey(raw, mode, opts)

	if v, ok := c.entries.Get(key); ok {
		if data, ok := v.([]byte); ok {
			return data, nil
		}
	}

	data, err := c.renderFn(ctx, raw, mode, opts)
	if err != nil {
		return nil, err
	}

	c.entries.SetDefault(key, data)
	return data, nil
}

// Len returns the number of entries currently in the cache, including expired
// entries not yet purged.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.entries.Flush()
}

func cacheKey(raw []byte, mode Mode, opts Options) string {
	return fmt.Sprintf("%x:%s:%s", sha256.Sum256(raw), mode, opts.FixedHeading)
}
