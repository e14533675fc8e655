package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/pawshop/pawshop/internal/domain"
	"golang.org/x/sync/singleflight"
)

// DefaultProductCacheTTL bounds how stale a cached product may get. Stock
// freshness matters for cart clamping, so the window stays short.
const DefaultProductCacheTTL = 2 * time.Minute

type cacheEntry struct {
	id        int64
	product   domain.Product
	expiresAt time.Time
}

// ProductCache is a read-through TTL cache over the product repository,
// ordered by product id. Concurrent misses for the same id collapse into a
// single repository load.
type ProductCache struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[cacheEntry]
	ttl  time.Duration
	repo ProductRepository
	sfg  singleflight.Group
	stop chan struct{}
	once sync.Once
}

func NewProductCache(repo ProductRepository, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	c := &ProductCache{
		tree: btree.NewG(2, func(a, b cacheEntry) bool { return a.id < b.id }),
		ttl:  ttl,
		repo: repo,
		stop: make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*domain.Product, error) {
	c.mu.RLock()
	entry, ok := c.tree.Get(cacheEntry{id: id})
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		p := entry.product.Clone()
		return &p, nil
	}

	v, err, _ := c.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		p, err := c.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tree.ReplaceOrInsert(cacheEntry{id: id, product: p.Clone(), expiresAt: time.Now().Add(c.ttl)})
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(*domain.Product).Clone()
	return &p, nil
}

func (c *ProductCache) Invalidate(id int64) {
	c.mu.Lock()
	c.tree.Delete(cacheEntry{id: id})
	c.mu.Unlock()
}

func (c *ProductCache) janitor() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.pruneExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *ProductCache) pruneExpired() {
	now := time.Now()
	var expired []cacheEntry
	c.mu.RLock()
	c.tree.Ascend(func(e cacheEntry) bool {
		if now.After(e.expiresAt) {
			expired = append(expired, e)
		}
		return true
	})
	c.mu.RUnlock()
	if len(expired) == 0 {
		return
	}
	c.mu.Lock()
	for _, e := range expired {
		c.tree.Delete(e)
	}
	c.mu.Unlock()
}

func (c *ProductCache) Stop() {
	c.once.Do(func() { close(c.stop) })
}
