// Package stats derives totals, category breakdowns and daily series from a
// transaction list. Every function is pure and safe for concurrent use.
package stats

import (
	"sort"
	"time"

	"pocketbook/internal/core"
)

// CategoryFilterAll disables category filtering in DailySeries.
const CategoryFilterAll = "all"

// TotalFor sums the amounts of every transaction of kind.
func TotalFor(txs []core.Transaction, kind core.Kind) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Kind == kind {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Summarize returns income, expense and balance over txs.
func Summarize(txs []core.Transaction) core.Summary {
	income := TotalFor(txs, core.KindIncome)
	expense := TotalFor(txs, core.KindExpense)
	return core.Summary{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// InMonth keeps the transactions dated in the given calendar month,
// preserving order.
func InMonth(txs []core.Transaction, year, month int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.InMonth(year, month) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthOverview aggregates a single month: summary plus breakdown of kind.
func MonthOverview(txs []core.Transaction, year, month int, kind core.Kind) core.MonthOverview {
	monthly := InMonth(txs, year, month)
	return core.MonthOverview{
		Year:       year,
		Month:      month,
		Summary:    Summarize(monthly),
		ByCategory: CategoryBreakdown(monthly, kind),
	}
}

// CategoryBreakdown groups transactions of kind by category id, sorted by
// amount descending. Ties keep first-seen order. Percentages are relative to
// the grand total and are all zero when the grand total is zero.
func CategoryBreakdown(txs []core.Transaction, kind core.Kind) []core.CategoryShare {
	index := make(map[string]int)
	shares := make([]core.CategoryShare, 0)
	var grand core.Money

	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		i, ok := index[tx.CategoryID]
		if !ok {
			i = len(shares)
			index[tx.CategoryID] = i
			shares = append(shares, core.CategoryShare{
				CategoryID: tx.CategoryID,
				Category:   core.Resolve(kind, tx.CategoryID),
			})
		}
		shares[i].Amount = shares[i].Amount.Add(tx.Amount)
		grand = grand.Add(tx.Amount)
	}

	for i := range shares {
		if grand.Cents != 0 {
			shares[i].Percentage = float64(shares[i].Amount.Cents) / float64(grand.Cents) * 100
		}
	}

	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].Amount.Cents > shares[b].Amount.Cents
	})
	return shares
}

// DaysInMonth returns the Gregorian day count of month in year.
func DaysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DailySeries returns one entry per day of the month in ascending order,
// zero-filled, summing transactions of kind. An empty categoryFilter or
// CategoryFilterAll includes every category.
func DailySeries(txs []core.Transaction, year, month int, kind core.Kind, categoryFilter string) []core.DayTotal {
	days := DaysInMonth(year, month)
	series := make([]core.DayTotal, days)
	for d := 1; d <= days; d++ {
		series[d-1] = core.DayTotal{Day: d, Date: core.NewDate(year, month, d)}
	}

	all := categoryFilter == "" || categoryFilter == CategoryFilterAll
	for _, tx := range txs {
		if tx.Kind != kind || !tx.Date.InMonth(year, month) {
			continue
		}
		if !all && tx.CategoryID != categoryFilter {
			continue
		}
		i := tx.Date.Day() - 1
		series[i].Amount = series[i].Amount.Add(tx.Amount)
	}
	return series
}
