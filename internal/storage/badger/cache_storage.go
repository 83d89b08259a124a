package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/alphalens/internal/interfaces"
	"github.com/ternarybob/alphalens/internal/models"
)

// CacheStorage implements the ProviderCache interface for Badger.
// Entries are full-record upserts keyed by the deterministic cache key;
// expiry is enforced lazily at read time and in bulk by Sweep.
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ProviderCache {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a live entry by key. An expired entry is removed as a
// side effect and reported as a miss.
func (s *CacheStorage) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := s.db.Store().Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if entry.Expired(time.Now().UTC()) {
		// Lazy delete so a later sweep no longer sees this entry
		if err := s.db.Store().Delete(key, &models.CacheEntry{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Str("key", key).Err(err).Msg("Failed to delete expired cache entry")
		}
		return nil, interfaces.ErrCacheMiss
	}

	return &entry, nil
}

// Set upserts a cache entry under its CacheKey.
func (s *CacheStorage) Set(ctx context.Context, entry *models.CacheEntry) error {
	if err := s.db.Store().Upsert(entry.CacheKey, entry); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry. Missing keys are not an error.
func (s *CacheStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(key, &models.CacheEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Sweep removes all expired entries and returns the removed count.
func (s *CacheStorage) Sweep(ctx context.Context) (int, error) {
	var entries []models.CacheEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return 0, fmt.Errorf("failed to list cache entries for sweep: %w", err)
	}

	now := time.Now().UTC()
	removed := 0
	for i := range entries {
		if !entries[i].Expired(now) {
			continue
		}
		if err := s.db.Store().Delete(entries[i].CacheKey, &models.CacheEntry{}); err != nil {
			if err != badgerhold.ErrNotFound {
				s.logger.Warn().Str("key", entries[i].CacheKey).Err(err).Msg("Failed to delete entry during sweep")
			}
			continue
		}
		removed++
	}

	return removed, nil
}
