package http

import (
	"fmt"
	"net/http"
	"strings"

	"pocketbook/internal/core"
	"pocketbook/internal/stats"
)

type summaryResponse struct {
	Year    int          `json:"year"`
	Month   int          `json:"month"`
	Monthly core.Summary `json:"monthly"`
	AllTime core.Summary `json:"allTime"`
}

// cacheKey scopes derived results to a ledger version so mutations never
// serve stale aggregates.
func (s *Server) cacheKey(parts ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "v%d", s.ledger.Version())
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	resp, _ := s.summaries.Do(s.cacheKey("summary", params.Year, params.Month), func() (summaryResponse, error) {
		txs := s.ledger.Transactions()
		return summaryResponse{
			Year:    params.Year,
			Month:   params.Month,
			Monthly: stats.Summarize(stats.InMonth(txs, params.Year, params.Month)),
			AllTime: stats.Summarize(txs),
		}, nil
	})
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := ParseMonthParams(query, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	kind, err := ParseKindParam(query, core.KindExpense)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	shares, _ := s.breakdowns.Do(s.cacheKey("categories", params.Year, params.Month, kind), func() ([]core.CategoryShare, error) {
		return stats.CategoryBreakdown(stats.InMonth(s.ledger.Transactions(), params.Year, params.Month), kind), nil
	})

	var total core.Money
	for _, sh := range shares {
		total = total.Add(sh.Amount)
	}
	NewJSONResponse().Body(map[string]any{
		"year":       params.Year,
		"month":      params.Month,
		"type":       kind,
		"total":      total,
		"categories": shares,
	}).Write(w)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := ParseMonthParams(query, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	kind, err := ParseKindParam(query, core.KindExpense)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	category := sanitizeInput(query.Get("category"))
	if category == "" {
		category = stats.CategoryFilterAll
	}

	days, _ := s.dailies.Do(s.cacheKey("daily", params.Year, params.Month, kind, category), func() ([]core.DayTotal, error) {
		return stats.DailySeries(s.ledger.Transactions(), params.Year, params.Month, kind, category), nil
	})
	NewJSONResponse().Body(map[string]any{
		"year":     params.Year,
		"month":    params.Month,
		"type":     kind,
		"category": category,
		"days":     days,
	}).Write(w)
}
