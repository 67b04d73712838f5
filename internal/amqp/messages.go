package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// ExpenseChangedMessage notifies the rollover worker that a user's expense
// list changed. It carries identifiers only; the worker re-reads the user's
// state from the store.
type ExpenseChangedMessage struct {
	UserID    string    `json:"userId"`
	ExpenseID string    `json:"expenseId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseChangedMessage(userID, expenseID, action string) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		UserID:    userID,
		ExpenseID: expenseID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
