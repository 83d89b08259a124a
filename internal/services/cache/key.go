// Package cache provides cache-key construction and the no-op cache used
// for cache-disabled operation. The persistent implementation lives in
// storage/badger.
package cache

import (
	"fmt"
	"sort"
	"strings"
)

// keySeparator joins key parts. Fixed: keys are persisted and must be
// stable across versions.
const keySeparator = ":"

// MakeKey builds the deterministic cache key for a provider call.
//
// Format: provider:operation:ticker:k1=v1:k2=v2 with params sorted by
// name, so parameter order never changes the key.
func MakeKey(provider, operation, ticker string, params map[string]string) string {
	parts := make([]string, 0, 3+len(params))
	parts = append(parts, provider, operation, ticker)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, params[name]))
	}

	return strings.Join(parts, keySeparator)
}
