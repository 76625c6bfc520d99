package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "pocketbook.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "expense_tracker_budget"); err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}
	if err := repo.Put(ctx, "expense_tracker_budget", "1000"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "expense_tracker_budget", "1250.5"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// migrations are idempotent and data survives a reopen
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	v, ok, err := repo.Get(ctx, "expense_tracker_budget")
	if err != nil || !ok || v != "1250.5" {
		t.Fatalf("expected 1250.5, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pocketbook.db")

	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	v, ok, err := SchemaVersion(dbPath)
	if err != nil || !ok || v != 1 {
		t.Fatalf("expected version 1, got %d ok=%v err=%v", v, ok, err)
	}

	fresh := filepath.Join(t.TempDir(), "fresh.db")
	if _, ok, err := SchemaVersion(fresh); err != nil || ok {
		t.Fatalf("expected unmigrated database, got ok=%v err=%v", ok, err)
	}
}
