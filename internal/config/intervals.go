package config

import "time"

// Worker and cache intervals
const (
	// DefaultReloadInterval defines how often jurisdiction snapshots are reloaded from PostgreSQL
	DefaultReloadInterval = 10 * time.Minute

	// DefaultLookupCacheTTL defines how long a lookup response stays in Redis
	DefaultLookupCacheTTL = time.Hour

	// StoreTimeout bounds a single Redis round trip
	StoreTimeout = 5 * time.Second

	// SnapshotLoadTimeout bounds loading one jurisdiction from PostgreSQL
	SnapshotLoadTimeout = 2 * time.Minute
)
