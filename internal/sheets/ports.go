package sheets

import (
	"context"

	"pocketbook/internal/core"
)

// Ports for outbound adapters.
type (
	// Mirror keeps an external copy of the ledger, one row per transaction.
	// Every method is idempotent so redelivered events are harmless.
	Mirror interface {
		AppendRow(ctx context.Context, tx core.Transaction) error
		DeleteRow(ctx context.Context, id string) error
		ReplaceAll(ctx context.Context, txs []core.Transaction) error
	}

	// RowLister reads the mirrored rows back in sheet order.
	RowLister interface {
		ListRows(ctx context.Context) ([]core.Transaction, error)
	}
)
