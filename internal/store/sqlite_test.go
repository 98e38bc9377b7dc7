package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nhle/punchcard/internal/store"
	"github.com/nhle/punchcard/tests/testutil"
)

func TestSQLiteStoreGetSet(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "todos"); err != nil || ok {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}

	if err := s.Set(ctx, "todos", []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "todos", []byte(`[2]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "todos")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(got) != `[2]` {
		t.Errorf("value = %s, want [2]", got)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "todos" || entries[0].Revision != 2 || entries[0].Size != 3 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSQLiteStoreSetMany(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.SetMany(ctx, map[string][]byte{
		"templates": []byte(`[]`),
		"history":   []byte(`["a"]`),
	})
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	for _, k := range []string{"templates", "history"} {
		if _, ok, err := s.Get(ctx, k); err != nil || !ok {
			t.Errorf("Get(%s) = %v, %v", k, ok, err)
		}
	}
	if err := s.SetMany(ctx, nil); err != nil {
		t.Errorf("SetMany(nil): %v", err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "punchcard.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Set(ctx, "ui-configuration", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
	if got, ok, _ := s.Get(ctx, "ui-configuration"); !ok || string(got) != `{"theme":"dark"}` {
		t.Errorf("value after reopen = %s, %v", got, ok)
	}
}
