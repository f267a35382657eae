package amqp

import (
	"encoding/json"
	"time"

	"tally/internal/core"
)

// Actions carried by TransactionEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a transaction changed.
// Consumers fetch the full record themselves; the event only identifies it.
type TransactionEvent struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      core.Kind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent stamps an event for the given action and record.
func NewTransactionEvent(action, id, ownerID string, kind core.Kind) *TransactionEvent {
	return &TransactionEvent{
		Action:    action,
		ID:        id,
		OwnerID:   ownerID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
