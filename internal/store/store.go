package store

import (
	"context"
	"time"
)

// KV is the durable blob store the tracker state is persisted to.
// Get reports false when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// BatchKV is a KV that can write several keys atomically.
type BatchKV interface {
	KV
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Entry describes one stored key.
type Entry struct {
	Key       string    `db:"key"`
	Size      int       `db:"size"`
	Revision  int       `db:"revision"`
	UpdatedAt time.Time `db:"updated_at"`
}
