package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"pocketbook/internal/amqp"
	"pocketbook/internal/budget"
	"pocketbook/internal/core"
	"pocketbook/internal/ledger"
)

// EventPublisher delivers ledger events to the mirror worker.
type EventPublisher interface {
	Publish(ctx context.Context, evt *amqp.LedgerEvent) error
}

// LedgerService orchestrates ledger mutations, budget evaluation and event
// publishing. Storage is authoritative; publishing is best effort.
type LedgerService struct {
	store     *ledger.Store
	budget    *budget.Tracker
	publisher EventPublisher
}

// NewLedgerService wires the service. publisher may be nil when no broker
// is configured.
func NewLedgerService(store *ledger.Store, tracker *budget.Tracker, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		budget:    tracker,
		publisher: publisher,
	}
}

// Load restores the ledger and the budget limit from storage.
func (s *LedgerService) Load(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	if err := s.budget.Load(ctx); err != nil {
		return err
	}
	s.evaluate(ctx)
	return nil
}

func (s *LedgerService) Transactions() []core.Transaction {
	return s.store.List()
}

// Version changes whenever the ledger does.
func (s *LedgerService) Version() uint64 {
	return s.store.Version()
}

func (s *LedgerService) NewID() string {
	return s.store.NewID()
}

// Add validates and stores tx at the head of the ledger.
func (s *LedgerService) Add(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.store.Append(ctx, tx); err != nil {
		return fmt.Errorf("add transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction added",
		"transaction_id", tx.ID,
		"kind", tx.Kind,
		"category", tx.CategoryID,
		"amount", tx.Amount.String())

	s.publish(ctx, amqp.NewTransactionCreated(tx))
	s.evaluate(ctx)
	return nil
}

// Delete removes the transaction with id. found is false for unknown ids.
func (s *LedgerService) Delete(ctx context.Context, id string) (found bool, err error) {
	_, found, err = s.store.Remove(ctx, id)
	if err != nil {
		return found, fmt.Errorf("delete transaction: %w", err)
	}
	if !found {
		return false, nil
	}
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)

	s.publish(ctx, amqp.NewTransactionDeleted(id))
	s.evaluate(ctx)
	return true, nil
}

// PreviewImport validates a backup without applying it and returns the
// number of records it holds.
func (s *LedgerService) PreviewImport(data []byte) (int, error) {
	list, err := ledger.ParseImport(data, s.store.NewID)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Import replaces the whole ledger with the backup in data.
func (s *LedgerService) Import(ctx context.Context, data []byte) (int, error) {
	n, err := s.store.Import(ctx, data)
	if err != nil {
		return n, fmt.Errorf("import backup: %w", err)
	}
	slog.InfoContext(ctx, "Backup imported", "count", n)

	s.publish(ctx, amqp.NewLedgerReplaced(n))
	s.evaluate(ctx)
	return n, nil
}

// Export writes the current ledger as a backup file.
func (s *LedgerService) Export(w io.Writer) error {
	return s.store.Export(w)
}

// BudgetStatus evaluates the budget against the current month.
func (s *LedgerService) BudgetStatus(ctx context.Context) budget.Status {
	return s.evaluate(ctx)
}

// SetBudget saves a new monthly limit and returns the resulting status.
func (s *LedgerService) SetBudget(ctx context.Context, limit core.Money) (budget.Status, error) {
	if err := s.budget.SetLimit(ctx, limit); err != nil {
		return budget.Status{}, err
	}
	return s.evaluate(ctx), nil
}

// DismissAlert acknowledges an active budget alert.
func (s *LedgerService) DismissAlert(ctx context.Context) budget.Status {
	state := s.budget.Dismiss()
	slog.InfoContext(ctx, "Budget alert dismissed", "alert", state.String())
	return s.evaluate(ctx)
}

func (s *LedgerService) evaluate(ctx context.Context) budget.Status {
	status, fired := s.budget.Evaluate(s.store.List())
	if fired {
		slog.WarnContext(ctx, "Monthly budget exceeded",
			"limit", status.Limit.String(),
			"spent", status.Spent.String())
		s.publish(ctx, amqp.NewBudgetAlerted(status.Limit, status.Spent))
	}
	return status
}

func (s *LedgerService) publish(ctx context.Context, evt *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping", "type", evt.Type)
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		// The ledger is already saved; the periodic resync repairs the mirror.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", evt.Type, "transaction_id", evt.TransactionID, "error", err)
	}
}
