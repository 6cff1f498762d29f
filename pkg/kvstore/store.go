// Package kvstore defines the key-value substrate that conversation memory is
// persisted in.
//
// The [Store] interface is deliberately narrow: it exposes exactly the list
// and sorted-set primitives the memory layer needs, each as a single-key
// operation that the backend executes in order (push, trim, expire) or
// (increment, expire). Isolation between users is achieved purely by key
// namespacing; implementations never take cross-key locks.
//
// Stores are pluggable via configuration:
//
//	[memory]
//	provider = "redis"   # or "inmemory"
package kvstore

import (
	"context"
	"time"
)

// Store is the persistence substrate for conversation memory.
// Implementations must be safe for concurrent use.
type Store interface {
	// PushCapped prepends value to the list at key, trims the list to its
	// newest maxLen entries and (re)sets the key's expiration to ttl.
	// A maxLen <= 0 leaves the list unbounded. A ttl <= 0 leaves the
	// expiration untouched.
	PushCapped(ctx context.Context, key, value string, maxLen int64, ttl time.Duration) error

	// Range returns list entries between start and stop inclusive, using
	// LRANGE index semantics (negative indexes count from the tail, -1 is the
	// last element). A missing key yields an empty slice.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)

	// IncrMembers increments the score of each member in the sorted set at
	// key by 1. Repeated members are incremented once per occurrence. The
	// key's expiration is (re)set to ttl afterwards.
	IncrMembers(ctx context.Context, key string, members []string, ttl time.Duration) error

	// TopMembers returns up to limit members of the sorted set at key,
	// ordered by descending score. Members with equal scores are ordered by
	// descending byte-wise lexicographic order of the member.
	TopMembers(ctx context.Context, key string, limit int64) ([]ScoredMember, error)

	// Delete removes the given keys. Deleting a missing key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// ScoredMember is one entry of a frequency-ranked set.
type ScoredMember struct {
	Member string
	Score  float64
}
