package memory

import (
	"context"
	"sync"

	"pocketbook/internal/core"
	ports "pocketbook/internal/sheets"
)

// Mirror is an in-process stand-in for a spreadsheet.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var (
	_ ports.Mirror    = (*Mirror)(nil)
	_ ports.RowLister = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{}
}

// AppendRow adds tx at the bottom unless a row with its id already exists.
func (m *Mirror) AppendRow(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == tx.ID {
			return nil
		}
	}
	m.rows = append(m.rows, tx)
	return nil
}

func (m *Mirror) DeleteRow(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *Mirror) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]core.Transaction(nil), txs...)
	return nil
}

func (m *Mirror) ListRows(_ context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...), nil
}
