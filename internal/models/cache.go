package models

import "time"

// CacheEntry is one cached provider response. Data is the opaque
// serialized payload; the owning adapter knows its shape.
type CacheEntry struct {
	CacheKey  string    `json:"cache_key" badgerhold:"key"`
	Provider  string    `json:"provider"`
	Ticker    string    `json:"ticker"`
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry's expiry has passed at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
