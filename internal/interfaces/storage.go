package interfaces

// StorageManager composes the storage backends behind one lifecycle.
type StorageManager interface {
	CacheStorage() ProviderCache
	RunStorage() RunStore
	Close() error
}
