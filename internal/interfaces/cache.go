package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/alphalens/internal/models"
)

// ErrCacheMiss is returned by ProviderCache.Get when no live entry exists
// for a key. Expired entries count as misses.
var ErrCacheMiss = errors.New("cache entry not found")

// ProviderCache stores provider responses keyed by the deterministic
// cache-key string. Writes are full-entry, last-writer-wins replacements.
type ProviderCache interface {
	// Get returns the entry for key, or ErrCacheMiss if absent or expired.
	// Reading an expired entry removes it as a side effect.
	Get(ctx context.Context, key string) (*models.CacheEntry, error)

	// Set upserts an entry under its CacheKey.
	Set(ctx context.Context, entry *models.CacheEntry) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Sweep removes all expired entries and returns the removed count.
	Sweep(ctx context.Context) (int, error)
}
