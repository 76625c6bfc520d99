package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
)

func tx(id string, kind core.Kind, cents int64, cat string, date core.Date) core.Transaction {
	return core.Transaction{ID: id, Kind: kind, Amount: core.Money{Cents: cents}, CategoryID: cat, Date: date}
}

func demoSet() []core.Transaction {
	today := core.NewDate(2025, 3, 14)
	return []core.Transaction{
		tx("1", core.KindExpense, 3500, "food", today),
		tx("2", core.KindExpense, 400, "transport", today),
		tx("3", core.KindIncome, 850000, "salary", core.NewDate(2025, 3, 12)),
	}
}

func TestSummarizeDemoSet(t *testing.T) {
	s := Summarize(demoSet())
	assert.Equal(t, int64(3900), s.Expense.Cents)
	assert.Equal(t, int64(850000), s.Income.Cents)
	assert.Equal(t, int64(846100), s.Balance.Cents)
}

func TestTotalForEmpty(t *testing.T) {
	assert.True(t, TotalFor(nil, core.KindExpense).IsZero())
	assert.Empty(t, CategoryBreakdown(nil, core.KindExpense))
}

func TestCategoryBreakdownDemoSet(t *testing.T) {
	shares := CategoryBreakdown(demoSet(), core.KindExpense)
	require.Len(t, shares, 2)

	assert.Equal(t, "food", shares[0].CategoryID)
	assert.Equal(t, int64(3500), shares[0].Amount.Cents)
	assert.InDelta(t, 89.74, shares[0].Percentage, 0.01)

	assert.Equal(t, "transport", shares[1].CategoryID)
	assert.InDelta(t, 10.26, shares[1].Percentage, 0.01)
}

func TestCategoryBreakdownMatchesTotal(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.KindExpense, 1234, "food", core.NewDate(2025, 1, 1)),
		tx("b", core.KindExpense, 999, "shopping", core.NewDate(2025, 1, 2)),
		tx("c", core.KindExpense, 1, "food", core.NewDate(2025, 1, 3)),
		tx("d", core.KindExpense, 5000, "housing", core.NewDate(2025, 1, 4)),
		tx("e", core.KindIncome, 700, "bonus", core.NewDate(2025, 1, 5)),
	}
	for _, kind := range []core.Kind{core.KindExpense, core.KindIncome} {
		shares := CategoryBreakdown(txs, kind)
		var sum int64
		var pct float64
		for i, s := range shares {
			sum += s.Amount.Cents
			pct += s.Percentage
			if i > 0 {
				assert.GreaterOrEqual(t, shares[i-1].Amount.Cents, s.Amount.Cents, "not sorted descending")
			}
		}
		assert.Equal(t, TotalFor(txs, kind).Cents, sum)
		assert.InDelta(t, 100, pct, 1e-9)
	}
}

func TestCategoryBreakdownStableTies(t *testing.T) {
	d := core.NewDate(2025, 1, 1)
	txs := []core.Transaction{
		tx("a", core.KindExpense, 500, "shopping", d),
		tx("b", core.KindExpense, 500, "food", d),
		tx("c", core.KindExpense, 500, "medical", d),
	}
	shares := CategoryBreakdown(txs, core.KindExpense)
	require.Len(t, shares, 3)
	assert.Equal(t, []string{"shopping", "food", "medical"},
		[]string{shares[0].CategoryID, shares[1].CategoryID, shares[2].CategoryID})
}

func TestCategoryBreakdownZeroGrandTotal(t *testing.T) {
	d := core.NewDate(2025, 1, 1)
	txs := []core.Transaction{
		tx("a", core.KindExpense, 0, "food", d),
		tx("b", core.KindExpense, 0, "transport", d),
	}
	for _, s := range CategoryBreakdown(txs, core.KindExpense) {
		assert.Zero(t, s.Percentage)
	}
}

func TestCategoryBreakdownUnknownCategory(t *testing.T) {
	txs := []core.Transaction{tx("x", core.KindExpense, 1000, "unknown_id", core.NewDate(2025, 1, 1))}
	var shares []core.CategoryShare
	require.NotPanics(t, func() { shares = CategoryBreakdown(txs, core.KindExpense) })
	require.Len(t, shares, 1)
	assert.Equal(t, "unknown_id", shares[0].CategoryID)
	assert.Equal(t, core.FallbackCategoryID, shares[0].Category.ID)
	assert.InDelta(t, 100, shares[0].Percentage, 1e-9)
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{1900, 2, 28},
		{2000, 2, 29},
		{2025, 1, 31},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DaysInMonth(tc.year, tc.month), "%d-%02d", tc.year, tc.month)
	}
}

func TestDailySeries(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.KindExpense, 1000, "food", core.NewDate(2024, 2, 1)),
		tx("b", core.KindExpense, 250, "food", core.NewDate(2024, 2, 29)),
		tx("c", core.KindExpense, 300, "transport", core.NewDate(2024, 2, 29)),
		tx("d", core.KindExpense, 9999, "food", core.NewDate(2024, 3, 1)),
		tx("e", core.KindIncome, 5000, "salary", core.NewDate(2024, 2, 1)),
	}

	series := DailySeries(txs, 2024, 2, core.KindExpense, CategoryFilterAll)
	require.Len(t, series, 29)
	for i, p := range series {
		assert.Equal(t, i+1, p.Day)
		assert.GreaterOrEqual(t, p.Amount.Cents, int64(0))
	}
	assert.Equal(t, int64(1000), series[0].Amount.Cents)
	assert.Equal(t, int64(550), series[28].Amount.Cents)
	assert.Equal(t, "2024-02-29", series[28].Date.String())

	food := DailySeries(txs, 2024, 2, core.KindExpense, "food")
	assert.Equal(t, int64(250), food[28].Amount.Cents)

	empty := DailySeries(nil, 2023, 2, core.KindIncome, "")
	require.Len(t, empty, 28)
	for _, p := range empty {
		assert.Zero(t, p.Amount.Cents)
	}
}

func TestMonthOverview(t *testing.T) {
	txs := append(demoSet(), tx("old", core.KindExpense, 100000, "housing", core.NewDate(2025, 2, 1)))
	o := MonthOverview(txs, 2025, 3, core.KindExpense)
	assert.Equal(t, int64(3900), o.Summary.Expense.Cents)
	assert.Len(t, o.ByCategory, 2)
}

func TestLargestAmountsDoNotWrap(t *testing.T) {
	largest, err := core.ParseAmount("100000000000")
	require.NoError(t, err)
	day := core.NewDate(2025, 3, 1)
	txs := []core.Transaction{
		tx("a", core.KindExpense, largest.Cents, "food", day),
		tx("b", core.KindExpense, largest.Cents, "food", day),
	}

	total := TotalFor(txs, core.KindExpense)
	assert.Equal(t, 2*core.MaxCents, total.Cents)

	series := DailySeries(txs, 2025, 3, core.KindExpense, CategoryFilterAll)
	assert.Equal(t, total, series[0].Amount)

	shares := CategoryBreakdown(txs, core.KindExpense)
	require.Len(t, shares, 1)
	assert.Equal(t, total, shares[0].Amount)

	_, err = core.ParseAmount("50000000000000000")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}
