package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/services"
)

// RolloverWorker re-runs the budget rollover check whenever a user's expense
// list changes. Errors propagate so the message is requeued by the consumer.
type RolloverWorker struct {
	rollover *services.RolloverService
}

func NewRolloverWorker(rollover *services.RolloverService) *RolloverWorker {
	return &RolloverWorker{rollover: rollover}
}

// HandleExpenseChanged processes a single expense-change message.
func (w *RolloverWorker) HandleExpenseChanged(ctx context.Context, msg *amqp.ExpenseChangedMessage) error {
	slog.InfoContext(ctx, "Processing expense change",
		"user_id", msg.UserID,
		"expense_id", msg.ExpenseID,
		"action", msg.Action)

	budget, err := w.rollover.RolloverFromStore(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("rollover for user %s: %w", msg.UserID, err)
	}

	slog.DebugContext(ctx, "Rollover check complete",
		"user_id", msg.UserID,
		"current_month", budget.CurrentMonth,
		"current_budget_cents", budget.CurrentBudget.Cents)
	return nil
}
