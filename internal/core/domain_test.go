package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2024, 2, 29), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "2023-02-29", "29/02/2024", "2024-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Income "); err != nil || k != KindIncome {
		t.Fatalf("expected income, got %q (err=%v)", k, err)
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:         "a",
		Kind:       KindExpense,
		Amount:     Money{Cents: 3500},
		CategoryID: "food",
		Date:       NewDate(2025, 3, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty id", func(tx *Transaction) { tx.ID = " " }, ErrEmptyID},
		{"bad kind", func(tx *Transaction) { tx.Kind = "gift" }, ErrInvalidKind},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"income category on expense", func(tx *Transaction) { tx.CategoryID = "salary" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransactionJSONShape(t *testing.T) {
	tx := Transaction{
		ID:         "1",
		Kind:       KindExpense,
		Amount:     Money{Cents: 3500},
		CategoryID: "food",
		Date:       NewDate(2025, 3, 14),
		Note:       "lunch",
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"1","type":"expense","amount":35,"category":"food","date":"2025-03-14","note":"lunch"}`
	if string(b) != want {
		t.Fatalf("unexpected json\n got: %s\nwant: %s", b, want)
	}

	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != tx {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, tx)
	}
}

func TestDraftNormalize(t *testing.T) {
	today := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

	d := Draft{Kind: "INCOME", Amount: "10", CategoryID: "food"}.Normalize(today)
	if d.Kind != KindIncome {
		t.Fatalf("expected income, got %q", d.Kind)
	}
	if d.CategoryID != "other_income" {
		t.Fatalf("expected fallback other_income, got %q", d.CategoryID)
	}
	if d.Date != "2025-03-14" {
		t.Fatalf("expected today, got %q", d.Date)
	}

	d = Draft{Kind: "refund", CategoryID: "transport", Date: "2025-03-01"}.Normalize(today)
	if d.Kind != KindExpense || d.CategoryID != "transport" || d.Date != "2025-03-01" {
		t.Fatalf("unexpected draft %+v", d)
	}
}
