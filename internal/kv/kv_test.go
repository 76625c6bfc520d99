package kv

import (
	"context"
	"errors"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, "expense_tracker_data", `[{"id":"1"}]`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "expense_tracker_data", `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, "expense_tracker_data")
	if err != nil || !ok || v != `[]` {
		t.Fatalf("expected [] got %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Put(ctx, "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, s)

	// a second instance over the same directory sees persisted values
	again, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, _ := again.Get(context.Background(), "expense_tracker_data"); !ok || v != `[]` {
		t.Fatalf("value not persisted, got %q", v)
	}

	if err := s.Put(context.Background(), "../escape", "x"); err == nil {
		t.Fatalf("expected error for path-like key")
	}
}
