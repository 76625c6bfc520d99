package google

import (
	"fmt"
	"strings"

	"pocketbook/internal/core"
)

var header = []string{"ID", "Date", "Type", "Category", "Amount", "Note"}

// toRow lays a transaction out as A:F. Amounts go in as plain decimals so
// the sheet can sum them.
func toRow(tx core.Transaction) []any {
	return []any{tx.ID, tx.Date.String(), string(tx.Kind), tx.CategoryID, tx.Amount.Decimal().InexactFloat64(), tx.Note}
}

func headerRow() []any {
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}

// fromRow parses a data row using the column positions found in hdr.
func fromRow(hdr []string, values []any) (core.Transaction, error) {
	row := toStrings(values)
	get := func(name string) string {
		return strings.TrimSpace(safeGet(row, indexOf(hdr, name)))
	}

	id := get("ID")
	if id == "" {
		return core.Transaction{}, fmt.Errorf("row without id: %v", row)
	}
	kind, err := core.ParseKind(get("Type"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", id, err)
	}
	date, err := core.ParseDate(get("Date"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", id, err)
	}
	amount, err := core.ParseAmount(get("Amount"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", id, err)
	}
	return core.Transaction{
		ID:         id,
		Kind:       kind,
		Amount:     amount,
		CategoryID: get("Category"),
		Date:       date,
		Note:       get("Note"),
	}, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
