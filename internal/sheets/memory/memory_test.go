package memory

import (
	"context"
	"testing"

	"pocketbook/internal/core"
)

func row(id string) core.Transaction {
	return core.Transaction{ID: id, Kind: core.KindExpense, Amount: core.Money{Cents: 100}, CategoryID: "food", Date: core.NewDate(2025, 1, 1)}
}

func TestMirrorAppendDeleteReplace(t *testing.T) {
	ctx := context.Background()
	m := New()

	for _, id := range []string{"a", "b", "a"} {
		if err := m.AppendRow(ctx, row(id)); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	rows, _ := m.ListRows(ctx)
	if len(rows) != 2 {
		t.Fatalf("expected duplicate append to be ignored, got %d rows", len(rows))
	}

	if err := m.DeleteRow(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteRow(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	rows, _ = m.ListRows(ctx)
	if len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if err := m.ReplaceAll(ctx, []core.Transaction{row("x"), row("y"), row("z")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	rows, _ = m.ListRows(ctx)
	if len(rows) != 3 || rows[0].ID != "x" || rows[2].ID != "z" {
		t.Fatalf("unexpected rows after replace %+v", rows)
	}
}
