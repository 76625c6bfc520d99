package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/core"
	"pocketbook/internal/sheets"
)

// SnapshotFunc returns the authoritative transaction list.
type SnapshotFunc func(ctx context.Context) ([]core.Transaction, error)

// MirrorWorker applies ledger events to an external mirror.
type MirrorWorker struct {
	mirror   sheets.Mirror
	snapshot SnapshotFunc
}

func NewMirrorWorker(mirror sheets.Mirror, snapshot SnapshotFunc) *MirrorWorker {
	return &MirrorWorker{mirror: mirror, snapshot: snapshot}
}

// HandleEvent processes a single ledger event from AMQP. A returned error
// requeues the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	switch evt.Type {
	case amqp.EventTransactionCreated:
		if err := w.mirror.AppendRow(ctx, *evt.Transaction); err != nil {
			return fmt.Errorf("mirror created transaction %s: %w", evt.TransactionID, err)
		}
		slog.InfoContext(ctx, "Mirrored new transaction", "transaction_id", evt.TransactionID)
	case amqp.EventTransactionDeleted:
		if err := w.mirror.DeleteRow(ctx, evt.TransactionID); err != nil {
			return fmt.Errorf("mirror deleted transaction %s: %w", evt.TransactionID, err)
		}
		slog.InfoContext(ctx, "Removed mirrored transaction", "transaction_id", evt.TransactionID)
	case amqp.EventLedgerReplaced:
		return w.Resync(ctx)
	case amqp.EventBudgetAlerted:
		var limit, spent core.Money
		if evt.Limit != nil {
			limit = *evt.Limit
		}
		if evt.Spent != nil {
			spent = *evt.Spent
		}
		slog.WarnContext(ctx, "Monthly budget exceeded",
			"limit", limit.String(),
			"spent", spent.String(),
			"over_by", spent.Sub(limit).String())
	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "type", evt.Type)
	}
	return nil
}

// Resync rewrites the whole mirror from the current snapshot.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	txs, err := w.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := w.mirror.ReplaceAll(ctx, txs); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirror resynchronized", "rows", len(txs))
	return nil
}

// RunPeriodicResync resyncs every interval until ctx is cancelled, covering
// events lost while the broker was unreachable. Failures are logged.
func (w *MirrorWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic resync failed", "error", err)
			}
		}
	}
}
