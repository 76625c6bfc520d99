// Package ledger owns the ordered transaction list and keeps it persisted
// as a single JSON array in a kv.Store.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/kv"
)

// StorageKey is where the serialized transaction array lives.
const StorageKey = "expense_tracker_data"

var (
	ErrImportFormat = errors.New("invalid backup format: expected a JSON array of transactions")
	ErrPersist      = errors.New("persist ledger")
)

type Option func(*Store)

// WithClock overrides time.Now, used for the demo seed dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithDemoSeed controls whether a first run starts with sample data.
func WithDemoSeed(enabled bool) Option {
	return func(s *Store) { s.seedDemo = enabled }
}

// Store is the single owner of the transaction list. Newest entries are
// kept at the head. Every mutation rewrites the whole array.
type Store struct {
	mu       sync.RWMutex
	kv       kv.Store
	items    []core.Transaction
	version  uint64
	now      func() time.Time
	newID    func() string
	seedDemo bool
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:       store,
		now:      time.Now,
		newID:    uuid.NewString,
		seedDemo: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh transaction id.
func (s *Store) NewID() string {
	return s.newID()
}

// Load restores the list from storage. An absent key seeds the demo set.
// Undecodable data is logged and yields an empty list; it is not
// overwritten until the next mutation. Only storage read errors are returned.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		if !s.seedDemo {
			s.items = nil
			return nil
		}
		s.items = DemoTransactions(s.now(), s.newID)
		s.version++
		slog.InfoContext(ctx, "No saved ledger found, seeded demo data", "count", len(s.items))
		if err := s.persistLocked(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to persist demo data", "error", err)
		}
		return nil
	}

	var items []core.Transaction
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.ErrorContext(ctx, "Saved ledger is unreadable, starting empty", "error", err)
		s.items = nil
		s.version++
		return nil
	}
	s.items = items
	s.version++
	slog.InfoContext(ctx, "Ledger loaded", "count", len(items))
	return nil
}

// DemoTransactions is the sample data shown on first run.
func DemoTransactions(now time.Time, newID func() string) []core.Transaction {
	today := core.DateOf(now)
	return []core.Transaction{
		{ID: newID(), Kind: core.KindExpense, Amount: core.Money{Cents: 3500}, CategoryID: "food", Date: today, Note: "Lunch"},
		{ID: newID(), Kind: core.KindExpense, Amount: core.Money{Cents: 400}, CategoryID: "transport", Date: today, Note: "Metro"},
		{ID: newID(), Kind: core.KindIncome, Amount: core.Money{Cents: 850000}, CategoryID: "salary", Date: core.DateOf(now.AddDate(0, 0, -2)), Note: "March salary"},
	}
}

// List returns a copy of the transactions, newest first.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the transaction with id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.items {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every mutation. Callers use it as a cache key.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Append inserts tx at the head of the list. The caller validates tx.
// A persist failure is returned wrapped in ErrPersist; the in-memory
// change is kept.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]core.Transaction, 0, len(s.items)+1)
	items = append(items, tx)
	s.items = append(items, s.items...)
	s.version++
	return s.persistLocked(ctx)
}

// Remove deletes every transaction with id. Unknown ids are a no-op
// reported by removed=false.
func (s *Store) Remove(ctx context.Context, id string) (removed core.Transaction, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0:0]
	for _, tx := range s.items {
		if tx.ID == id {
			if !ok {
				removed, ok = tx, true
			}
			continue
		}
		kept = append(kept, tx)
	}
	if !ok {
		return core.Transaction{}, false, nil
	}
	s.items = kept
	s.version++
	return removed, true, s.persistLocked(ctx)
}

// ReplaceAll swaps in list wholesale, preserving its order.
func (s *Store) ReplaceAll(ctx context.Context, list []core.Transaction) error {
	items := make([]core.Transaction, len(list))
	copy(items, list)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.version++
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []core.Transaction{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.kv.Put(ctx, StorageKey, string(b)); err != nil {
		slog.ErrorContext(ctx, "Failed to persist ledger", "count", len(items), "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// ExportFilename names a backup taken at now.
func ExportFilename(now time.Time) string {
	return "expense_backup_" + now.Format(core.DateLayout) + ".json"
}

// Export writes the whole list as a pretty-printed JSON array.
func (s *Store) Export(w io.Writer) error {
	return WriteBackup(w, s.List())
}

// WriteBackup writes txs as a two-space indented JSON array.
func WriteBackup(w io.Writer, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ParseImport decodes a backup file. The top-level value must be an array
// and every element a well-formed transaction. Elements without an id get
// a fresh one. Categories are not checked against the registry.
func ParseImport(data []byte, newID func() string) ([]core.Transaction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrImportFormat
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}

	out := make([]core.Transaction, 0, len(raws))
	for i, raw := range raws {
		var tx core.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrImportFormat, i, err)
		}
		if tx.ID == "" {
			tx.ID = newID()
		}
		if !tx.Kind.IsValid() {
			return nil, fmt.Errorf("%w: record %d: unknown type %q", ErrImportFormat, i, tx.Kind)
		}
		if err := tx.Amount.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrImportFormat, i, err)
		}
		if err := tx.Date.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrImportFormat, i, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// Import parses data and, only when it is valid, replaces the whole list.
// It returns the number of imported transactions.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	list, err := ParseImport(data, s.newID)
	if err != nil {
		return 0, err
	}
	if err := s.ReplaceAll(ctx, list); err != nil {
		return len(list), err
	}
	return len(list), nil
}

// ReadSnapshot decodes the persisted list without taking ownership of it.
// Processes other than the owner, such as the mirror worker, use it to
// read a consistent copy. An absent key yields an empty list.
func ReadSnapshot(ctx context.Context, store kv.Store) ([]core.Transaction, error) {
	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read ledger snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var items []core.Transaction
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	return items, nil
}
