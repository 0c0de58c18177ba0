package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	TransactionCreated   EventType = "transaction.created"
	TransactionsImported EventType = "transactions.imported"
	TransactionsUpdated  EventType = "transactions.updated"
	TransactionsDeleted  EventType = "transactions.deleted"
	CategorizeRequested  EventType = "categorize.requested"
)

// LedgerEvent is a lightweight notification. It carries only transaction
// IDs; consumers read the transactions from the state store.
type LedgerEvent struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	TransactionIDs []int64   `json:"transactionIds,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, ids ...int64) *LedgerEvent {
	return &LedgerEvent{
		ID:             uuid.NewString(),
		Type:           t,
		TransactionIDs: ids,
		Timestamp:      time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
