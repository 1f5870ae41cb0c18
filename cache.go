package landscaping

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of published blog posts with a TTL.
// Admin writes invalidate it.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	fetched time.Time
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store. A ttl of zero or
// less disables caching.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPublishedPosts(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	c.posts = posts
	c.fetched = c.now()
	return nil
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// ListPublished returns published posts, newest first.
func (c *PostCache) ListPublished(ctx context.Context) ([]BlogPost, error) {
	return c.ensureLoaded(ctx)
}

// GetPublished returns a single published post by slug from the cache.
func (c *PostCache) GetPublished(ctx context.Context, slug string) (BlogPost, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
