package http

import (
	"errors"
	"net/http"

	"pocketbook/internal/budget"
	"pocketbook/internal/log"
)

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.BudgetStatus(r.Context())).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	limit, err := budget.ParseLimit(p.Get("limit"))
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	status, err := s.ledger.SetBudget(ctx, limit)
	if err != nil {
		if errors.Is(err, budget.ErrNegativeLimit) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to save budget", log.FieldError, err)
		InternalServerError("the budget could not be saved").Write(w)
		return
	}
	NewJSONResponse().Body(status).Write(w)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.DismissAlert(r.Context())).Write(w)
}
