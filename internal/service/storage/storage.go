package storage

import "time"

// Storage defines interface for any keyed object storage
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	UpdatedAt(key K) (time.Time, bool)
	Delete(key K) bool
	GetAll() map[K]V
	Keys(less func(a, b K) bool) []K
	ForEach(fn func(key K, value V) bool)
	Count() int
}

var _ Storage[string, int] = (*MemoryStorage[string, int])(nil)
