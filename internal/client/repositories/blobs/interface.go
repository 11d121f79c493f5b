// Package blobs stores opaque values under string keys. It backs the
// persisted client state: accounts, the active account id and the last
// known good snapshot of every account.
package blobs

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// PutMany writes all pairs or none of them.
	PutMany(ctx context.Context, kv map[string][]byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// List returns every pair whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}
