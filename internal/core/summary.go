package core

import "time"

// CategoryShare is one slice of a category breakdown.
type CategoryShare struct {
	CategoryID string   `json:"categoryId"`
	Category   Category `json:"category"`
	Amount     Money    `json:"amount"`
	Percentage float64  `json:"percentage"`
}

// DayTotal is one point of a daily series.
type DayTotal struct {
	Day    int   `json:"day"`
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// Summary holds income, expense and their difference.
type Summary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// MonthOverview collects the aggregates shown for a single month.
type MonthOverview struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Summary    Summary         `json:"summary"`
	ByCategory []CategoryShare `json:"byCategory"`
}

// Draft pre-fills the manual entry form after receipt classification.
// Nothing in it is validated.
type Draft struct {
	Kind       Kind   `json:"type"`
	Amount     string `json:"amount"`
	CategoryID string `json:"category"`
	Date       string `json:"date"`
	Note       string `json:"note"`
}

// Normalize fills the form defaults: unknown kind becomes expense, a missing
// or foreign category becomes the kind's fallback, a missing date becomes today.
func (d Draft) Normalize(today time.Time) Draft {
	if !d.Kind.IsValid() {
		if k, err := ParseKind(string(d.Kind)); err == nil {
			d.Kind = k
		} else {
			d.Kind = KindExpense
		}
	}
	if !Valid(d.Kind, d.CategoryID) {
		d.CategoryID = Fallback(d.Kind).ID
	}
	if _, err := ParseDate(d.Date); err != nil {
		d.Date = DateOf(today).String()
	}
	return d
}

// BlankDraft is the empty manual form for kind.
func BlankDraft(kind Kind, today time.Time) Draft {
	return Draft{
		Kind:       kind,
		CategoryID: Default(kind).ID,
		Date:       DateOf(today).String(),
	}
}
