package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
	"pocketbook/internal/kv"
)

var march = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func expense(cents int64, date core.Date) core.Transaction {
	return core.Transaction{ID: "x", Kind: core.KindExpense, Amount: core.Money{Cents: cents}, CategoryID: "food", Date: date}
}

func newTracker(t *testing.T) (*Tracker, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	return NewTracker(store, WithClock(func() time.Time { return march })), store
}

func TestObserveTransitions(t *testing.T) {
	limit := core.Money{Cents: 10000}
	cases := []struct {
		name      string
		state     AlertState
		spent     int64
		wantState AlertState
		wantFired bool
	}{
		{"normal within limit", AlertNormal, 5000, AlertNormal, false},
		{"normal exactly at limit", AlertNormal, 10000, AlertNormal, false},
		{"normal over limit fires", AlertNormal, 12000, AlertActive, true},
		{"active stays over limit", AlertActive, 15000, AlertActive, false},
		{"active stays after recovery", AlertActive, 9000, AlertActive, false},
		{"dismissed stays while over", AlertDismissed, 15000, AlertDismissed, false},
		{"dismissed rearms on recovery", AlertDismissed, 10000, AlertNormal, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fired := Observe(tc.state, limit, core.Money{Cents: tc.spent})
			assert.Equal(t, tc.wantState, got)
			assert.Equal(t, tc.wantFired, fired)
		})
	}
}

func TestObserveDisabledBudgetNeverFires(t *testing.T) {
	state, fired := Observe(AlertNormal, core.Money{}, core.Money{Cents: 99999})
	assert.Equal(t, AlertNormal, state)
	assert.False(t, fired)
}

func TestOverrunEpisode(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.SetLimit(context.Background(), core.Money{Cents: 10000}))
	today := core.DateOf(march)

	st, fired := tr.Evaluate([]core.Transaction{expense(5000, today)})
	assert.False(t, fired)
	assert.Equal(t, AlertNormal, st.Alert)

	st, fired = tr.Evaluate([]core.Transaction{expense(12000, today)})
	assert.True(t, fired)
	assert.Equal(t, AlertActive, st.Alert)
	assert.Equal(t, int64(-2000), st.Remaining.Cents)
	assert.Equal(t, 1.0, st.UsageRatio)

	// still over: no second alert
	_, fired = tr.Evaluate([]core.Transaction{expense(13000, today)})
	assert.False(t, fired)

	assert.Equal(t, AlertDismissed, tr.Dismiss())

	_, fired = tr.Evaluate([]core.Transaction{expense(14000, today)})
	assert.False(t, fired, "dismissed alert must not fire again during the same episode")

	st, _ = tr.Evaluate([]core.Transaction{expense(9000, today)})
	assert.Equal(t, AlertNormal, st.Alert)

	st, fired = tr.Evaluate([]core.Transaction{expense(15000, today)})
	assert.True(t, fired, "new episode must fire again")
	assert.Equal(t, AlertActive, st.Alert)
}

func TestEvaluateCountsOnlyCurrentMonthExpenses(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.SetLimit(context.Background(), core.Money{Cents: 10000}))

	txs := []core.Transaction{
		expense(2500, core.NewDate(2025, 3, 1)),
		expense(50000, core.NewDate(2025, 2, 28)),
		{ID: "i", Kind: core.KindIncome, Amount: core.Money{Cents: 90000}, CategoryID: "salary", Date: core.NewDate(2025, 3, 2)},
	}
	st, fired := tr.Evaluate(txs)
	assert.False(t, fired)
	assert.Equal(t, int64(2500), st.Spent.Cents)
	assert.Equal(t, int64(7500), st.Remaining.Cents)
	assert.InDelta(t, 0.25, st.UsageRatio, 1e-9)
	assert.True(t, st.Enabled)
}

func TestDismissInNormalIsNoop(t *testing.T) {
	tr, _ := newTracker(t)
	assert.Equal(t, AlertNormal, tr.Dismiss())
}

func TestLimitPersistence(t *testing.T) {
	ctx := context.Background()
	tr, store := newTracker(t)

	require.NoError(t, tr.SetLimit(ctx, core.Money{Cents: 125050}))
	raw, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1250.5", raw)

	again := NewTracker(store)
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, int64(125050), again.Limit().Cents)

	assert.True(t, errors.Is(tr.SetLimit(ctx, core.Money{Cents: -1}), ErrNegativeLimit))
}

func TestLoadIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Put(ctx, StorageKey, "not a number"))

	tr := NewTracker(store)
	require.NoError(t, tr.Load(ctx))
	assert.True(t, tr.Limit().IsZero())
}

func TestParseLimit(t *testing.T) {
	m, err := ParseLimit(" 1000,25 ")
	require.NoError(t, err)
	assert.Equal(t, int64(100025), m.Cents)

	m, err = ParseLimit("")
	require.NoError(t, err)
	assert.True(t, m.IsZero())

	_, err = ParseLimit("-5")
	assert.ErrorIs(t, err, ErrNegativeLimit)

	_, err = ParseLimit("abc")
	assert.Error(t, err)

	m, err = ParseLimit("100000000000")
	require.NoError(t, err)
	assert.Equal(t, core.MaxCents, m.Cents)

	for _, in := range []string{"1e30", "92233720368547758.08", "100000000000.01"} {
		_, err = ParseLimit(in)
		assert.ErrorIs(t, err, core.ErrInvalidAmount, "input %q", in)
		assert.NotErrorIs(t, err, ErrNegativeLimit, "input %q", in)
	}
}

func TestUsageRatio(t *testing.T) {
	assert.Zero(t, UsageRatio(core.Money{}, core.Money{Cents: 100}))
	assert.InDelta(t, 0.5, UsageRatio(core.Money{Cents: 200}, core.Money{Cents: 100}), 1e-9)
	assert.Equal(t, 1.0, UsageRatio(core.Money{Cents: 100}, core.Money{Cents: 300}))
}
