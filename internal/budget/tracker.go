// Package budget tracks a monthly spending limit and raises an overrun alert
// at most once per overrun episode.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
	"pocketbook/internal/kv"
	"pocketbook/internal/stats"
)

// StorageKey is where the monthly limit is persisted, as a decimal string.
const StorageKey = "expense_tracker_budget"

var ErrNegativeLimit = errors.New("budget limit cannot be negative")

// AlertState is the overrun alert lifecycle.
type AlertState int

const (
	// AlertNormal: no alert showing, armed to fire on the next overrun.
	AlertNormal AlertState = iota
	// AlertActive: overrun detected and alert showing until dismissed.
	AlertActive
	// AlertDismissed: user dismissed the alert; stays latched until
	// spending is back within the limit.
	AlertDismissed
)

func (s AlertState) String() string {
	switch s {
	case AlertNormal:
		return "normal"
	case AlertActive:
		return "alerted"
	case AlertDismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("AlertState(%d)", int(s))
	}
}

func (s AlertState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Observe is the alert transition function. fired is true only on the
// Normal to Active edge.
func Observe(state AlertState, limit, spent core.Money) (next AlertState, fired bool) {
	remaining := limit.Sub(spent)
	switch state {
	case AlertNormal:
		if limit.Cents > 0 && remaining.Cents < 0 {
			return AlertActive, true
		}
	case AlertDismissed:
		if remaining.Cents >= 0 {
			return AlertNormal, false
		}
	}
	return state, false
}

// Status is a point-in-time view of the budget against the current month.
type Status struct {
	Enabled    bool       `json:"enabled"`
	Limit      core.Money `json:"limit"`
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	UsageRatio float64    `json:"usageRatio"`
	Alert      AlertState `json:"alert"`
}

// UsageRatio is spent/limit clamped to [0, 1]; zero when the limit is disabled.
func UsageRatio(limit, spent core.Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	r := float64(spent.Cents) / float64(limit.Cents)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// ParseLimit parses a decimal limit. Empty text means disabled.
func ParseLimit(s string) (core.Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return core.Money{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid budget limit %q: %w", s, err)
	}
	if d.IsNegative() {
		return core.Money{}, ErrNegativeLimit
	}
	limit, err := core.FromDecimal(d)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid budget limit %q: %w", s, err)
	}
	return limit, nil
}

type Option func(*Tracker)

// WithClock overrides time.Now, which decides the current month.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker owns the persisted limit and the in-memory alert state.
type Tracker struct {
	mu    sync.Mutex
	store kv.Store
	limit core.Money
	state AlertState
	now   func() time.Time
}

func NewTracker(store kv.Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load restores the limit. Missing or unparseable values leave the budget
// disabled; only storage read failures are returned.
func (t *Tracker) Load(ctx context.Context) error {
	raw, ok, err := t.store.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}
	limit := core.Money{}
	if ok {
		parsed, perr := ParseLimit(raw)
		if perr != nil {
			slog.WarnContext(ctx, "Ignoring unparseable budget limit", "value", raw, "error", perr)
		} else {
			limit = parsed
		}
	}
	t.mu.Lock()
	t.limit = limit
	t.mu.Unlock()
	return nil
}

func (t *Tracker) Limit() core.Money {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limit
}

// SetLimit persists a new limit. Zero disables the budget.
func (t *Tracker) SetLimit(ctx context.Context, limit core.Money) error {
	if limit.Cents < 0 {
		return ErrNegativeLimit
	}
	if err := t.store.Put(ctx, StorageKey, limit.Decimal().String()); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	t.mu.Lock()
	t.limit = limit
	t.mu.Unlock()
	slog.InfoContext(ctx, "Budget limit saved", "limit_cents", limit.Cents)
	return nil
}

// Evaluate recomputes the status for the current month and advances the
// alert state. fired reports a fresh overrun.
func (t *Tracker) Evaluate(txs []core.Transaction) (status Status, fired bool) {
	now := t.now()
	spent := stats.TotalFor(stats.InMonth(txs, now.Year(), int(now.Month())), core.KindExpense)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state, fired = Observe(t.state, t.limit, spent)
	return Status{
		Enabled:    t.limit.Cents > 0,
		Limit:      t.limit,
		Spent:      spent,
		Remaining:  t.limit.Sub(spent),
		UsageRatio: UsageRatio(t.limit, spent),
		Alert:      t.state,
	}, fired
}

// Dismiss acknowledges an active alert. It is a no-op in any other state.
func (t *Tracker) Dismiss() AlertState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == AlertActive {
		t.state = AlertDismissed
	}
	return t.state
}

func (t *Tracker) State() AlertState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
