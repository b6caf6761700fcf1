package types

import (
	"context"
)

// SnapshotStore is the durable key-value medium snapshots are written to.
// Any persistent store with get/set/remove semantics satisfies it; a Get
// for an absent key reports ErrSnapshotNotFound.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
