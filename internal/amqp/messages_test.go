package amqp

import (
	"testing"
	"time"
)

func TestExpenseChangedMessageRoundTrip(t *testing.T) {
	msg := NewExpenseChangedMessage("u1", "exp-42", ActionCreated)
	if msg.Timestamp.IsZero() {
		t.Fatal("NewExpenseChangedMessage() left Timestamp zero")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ExpenseChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseChangedMessageFromJSON() error = %v", err)
	}
	if got.UserID != "u1" || got.ExpenseID != "exp-42" || got.Action != ActionCreated {
		t.Errorf("round trip = %+v, want original fields", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestExpenseChangedMessageFromJSON_Invalid(t *testing.T) {
	if _, err := ExpenseChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
