// Package db defines the storage contract behind the embedding cache.
package db

import (
	"context"
	"time"
)

// Store is the database facade used by the embedding cache and health checks.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Entry is one key-value pair of a batched write.
type Entry struct {
	Key   string
	Value []byte
}

// KVStore stores opaque values by key. A ttl <= 0 stores without expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one slot per key, in order; missing keys leave a nil slot.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// PutMany writes all entries in one round trip.
	PutMany(ctx context.Context, entries []Entry, ttl time.Duration) error
}
