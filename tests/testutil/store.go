package testutil

import (
	"context"
	"testing"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/store"
)

// NewTestStore opens an in-memory SQLite key-value store with all
// migrations applied. The store is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedStore writes raw blobs under the given logical keys, as an older
// client or a hand-edited database would have left them.
func SeedStore(t *testing.T, kv store.KV, blobs map[model.Key]string) {
	t.Helper()

	for k, v := range blobs {
		if err := kv.Set(context.Background(), string(k), []byte(v)); err != nil {
			t.Fatalf("seeding %s: %v", k, err)
		}
	}
}
