// Package store provides the key-value storage consumed by the engine, with
// in-memory and SQLite-backed implementations. The key space is caller
// defined; no transactional multi-key guarantees are made.
package store

import "context"

// Storage is a key-value store. Get reports presence through its second
// return value; a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
