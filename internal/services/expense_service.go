package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/store"
)

// ExpensePublisher emits expense-change events. The AMQP client implements
// it; a nil publisher disables eventing.
type ExpensePublisher interface {
	PublishExpenseChanged(ctx context.Context, userID, expenseID, action string) error
}

// ExpenseService orchestrates expense writes against the document store and
// publishes change events for the rollover worker.
type ExpenseService struct {
	store     store.ExpenseStore
	publisher ExpensePublisher
	now       func() time.Time
}

func NewExpenseService(st store.ExpenseStore, publisher ExpensePublisher) *ExpenseService {
	return &ExpenseService{store: st, publisher: publisher, now: time.Now}
}

// CreateExpense validates and persists an expense, stamping CreatedAt at
// persistence time.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.CreatedAt = s.now().UnixMilli()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", saved.ID,
		"user_id", saved.UserID,
		"description", saved.Description,
		"amount_cents", saved.Amount.Cents,
		"date", saved.Date)

	// Best effort: the expense is saved either way.
	s.publishChanged(ctx, saved.UserID, saved.ID, "created")
	return saved, nil
}

// DeleteExpense removes a user's expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	s.publishChanged(ctx, userID, id, "deleted")
	return nil
}

// ListExpenses returns the user's expenses ordered by CreatedAt descending,
// optionally filtered to one "YYYY-MM" month.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID, month string) ([]core.Expense, error) {
	all, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if month == "" {
		return all, nil
	}

	filtered := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if core.ExpenseMonth(e.Date) == month {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *ExpenseService) publishChanged(ctx context.Context, userID, expenseID, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseChanged(ctx, userID, expenseID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense change",
			"user_id", userID,
			"expense_id", expenseID,
			"action", action,
			"error", err)
	}
}
