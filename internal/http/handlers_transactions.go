package http

import (
	"errors"
	"net/http"

	"pocketbook/internal/core"
	"pocketbook/internal/ledger"
	"pocketbook/internal/log"
	"pocketbook/internal/services"
)

// transactionView adds the resolved category so clients can render
// entries whose category id is no longer in the registry.
type transactionView struct {
	core.Transaction
	CategoryInfo core.Category `json:"categoryInfo"`
}

// unsavedResponse reports an entry that is in the ledger but not yet on disk.
type unsavedResponse struct {
	Error       string          `json:"error"`
	Transaction transactionView `json:"transaction"`
}

func viewOf(tx core.Transaction) transactionView {
	return transactionView{Transaction: tx, CategoryInfo: core.Resolve(tx.Kind, tx.CategoryID)}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("type") == "" {
		NewJSONResponse().Body(map[string][]core.Category{
			string(core.KindExpense): core.ForKind(core.KindExpense),
			string(core.KindIncome):  core.ForKind(core.KindIncome),
		}).Write(w)
		return
	}
	kind, err := ParseKindParam(query, core.KindExpense)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"type":       kind,
		"categories": core.ForKind(kind),
		"default":    core.Default(kind).ID,
	}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	txs := s.ledger.Transactions()

	if HasMonth(query) {
		params, err := ParseMonthParams(query, s.now())
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		filtered := txs[:0:0]
		for _, tx := range txs {
			if tx.Date.InMonth(params.Year, params.Month) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	if query.Get("type") != "" {
		kind, err := ParseKindParam(query, core.KindExpense)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		filtered := txs[:0:0]
		for _, tx := range txs {
			if tx.Kind == kind {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	views := make([]transactionView, len(txs))
	for i, tx := range txs {
		views[i] = viewOf(tx)
	}
	NewJSONResponse().Body(map[string]any{
		"count":        len(views),
		"transactions": views,
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		if isTooLarge(err) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return
		}
		BadRequestError("invalid request body").Write(w)
		return
	}

	tx, err := s.capture.AddManual(ctx, services.ManualEntry{
		Kind:       p.Get("type"),
		Amount:     p.Get("amount"),
		CategoryID: p.Get("category"),
		Date:       p.Get("date"),
		Note:       p.Get("note"),
	})
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrPersist) && tx.ID != "":
		// held in memory; a retry would record it twice
		log.FromContext(ctx).ErrorContext(ctx, "Transaction kept in memory but not persisted",
			log.FieldTransactionID, tx.ID, log.FieldError, err)
		NewJSONResponse().
			Status(http.StatusInternalServerError).
			Header("Location", "/api/transactions/"+tx.ID).
			Body(unsavedResponse{
				Error:       "the transaction was recorded but could not be saved to storage; do not resubmit it",
				Transaction: viewOf(tx),
			}).
			Write(w)
		return
	case isValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
		return
	default:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to save transaction", log.FieldError, err)
		InternalServerError("the transaction could not be saved").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(viewOf(tx)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("missing transaction id").Write(w)
		return
	}

	found, err := s.ledger.Delete(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete transaction", log.FieldTransactionID, id, log.FieldError, err)
		InternalServerError("the transaction could not be deleted").Write(w)
		return
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyID)
}
