package cache

import (
	"context"

	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
)

// NoOpCache is the cache-disabled implementation: every read misses and
// writes are discarded.
type NoOpCache struct{}

// NewNoOpCache creates a no-op provider cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	return nil, interfaces.ErrCacheMiss
}

func (c *NoOpCache) Set(ctx context.Context, entry *models.CacheEntry) error {
	return nil
}

func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NoOpCache) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

var _ interfaces.ProviderCache = (*NoOpCache)(nil)
