// Package kv defines the key-value capability the persistence layer
// runs on, with in-memory, Redis and SQLite implementations.
package kv

import "context"

// Store is the primitive surface every backend must provide. Values
// are opaque bytes; sets hold string members and back the per-entity
// id indexes.
type Store interface {
	// Get returns the value at key. found is false when the key is
	// absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set writes value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key, whether it holds a value or a set. Deleting
	// an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// SAdd adds member to the named set. Adding an existing member is
	// a no-op.
	SAdd(ctx context.Context, set, member string) error

	// SRem removes member from the named set.
	SRem(ctx context.Context, set, member string) error

	// SMembers returns all members of the named set, in no particular
	// order. An absent set yields an empty slice.
	SMembers(ctx context.Context, set string) ([]string, error)
}
