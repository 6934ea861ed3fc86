package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	KeyStore
	HashStore
	ListStore
	SetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyStore provides whole-key operations.
type KeyStore interface {
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAllMulti reads several hashes in one round-trip. A missing key
	// yields an empty map at its position.
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	// HSetIndexed writes a hash, sets its TTL (0 keeps it forever) and pushes
	// member onto the capped index list, all in one transaction. Keys must
	// share a hash slot on a cluster.
	HSetIndexed(ctx context.Context, key string, fields map[string]string, ttl time.Duration,
		indexKey, member string, maxLen int) error
}

// ListStore provides bounded, newest-first list operations.
type ListStore interface {
	// PushCapped prepends value and trims the list to maxLen entries, in one
	// transaction.
	PushCapped(ctx context.Context, key, value string, maxLen int) error
	// PushUnique removes every existing copy of value, prepends it and trims
	// the list to maxLen entries, in one transaction.
	PushUnique(ctx context.Context, key, value string, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// SetStore provides unordered string-set operations.
type SetStore interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	// ReplaceSet atomically swaps the set contents for members and sets its TTL
	// (0 keeps it forever). An empty members slice deletes the key.
	ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error
}
