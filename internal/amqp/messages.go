package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"pocketbook/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
	// EventLedgerReplaced carries no payload; consumers reload the snapshot.
	EventLedgerReplaced EventType = "ledger.replaced"
	EventBudgetAlerted  EventType = "budget.alerted"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTransactionCreated, EventTransactionDeleted, EventLedgerReplaced, EventBudgetAlerted:
		return true
	}
	return false
}

// LedgerEvent is published after every successful ledger mutation.
type LedgerEvent struct {
	Type          EventType         `json:"type"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Count         int               `json:"count,omitempty"`
	Limit         *core.Money       `json:"limit,omitempty"`
	Spent         *core.Money       `json:"spent,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewTransactionCreated(tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{Type: EventTransactionCreated, TransactionID: tx.ID, Transaction: &tx, Timestamp: time.Now()}
}

func NewTransactionDeleted(id string) *LedgerEvent {
	return &LedgerEvent{Type: EventTransactionDeleted, TransactionID: id, Timestamp: time.Now()}
}

func NewLedgerReplaced(count int) *LedgerEvent {
	return &LedgerEvent{Type: EventLedgerReplaced, Count: count, Timestamp: time.Now()}
}

func NewBudgetAlerted(limit, spent core.Money) *LedgerEvent {
	return &LedgerEvent{Type: EventBudgetAlerted, Limit: &limit, Spent: &spent, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var evt LedgerEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if !evt.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", evt.Type)
	}
	if evt.Type == EventTransactionCreated && evt.Transaction == nil {
		return nil, fmt.Errorf("%s event without transaction", evt.Type)
	}
	if evt.Type == EventTransactionDeleted && evt.TransactionID == "" {
		return nil, fmt.Errorf("%s event without transaction id", evt.Type)
	}
	return &evt, nil
}
