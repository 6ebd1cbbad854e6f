package localstore

import "context"

// Repository is the Local Durable Store contract.
type Repository interface {
	// Get returns common.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Create stores a new entry and returns common.ErrKeyExists instead of
	// overwriting one that is already present.
	Create(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	// ListKeys returns keys starting with prefix in ascending order;
	// an empty prefix lists everything.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// Atomically runs fn against a transactional view of the store.
	Atomically(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
