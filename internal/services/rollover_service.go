package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/store"
)

// RolloverService decides whether the stored budget record is stale relative
// to wall-clock time and, if so, computes and persists its successor.
type RolloverService struct {
	budgets  *BudgetService
	store    store.BudgetStore
	expenses store.ExpenseStore
	now      func() time.Time
}

func NewRolloverService(budgets *BudgetService, st store.BudgetStore, expenses store.ExpenseStore) *RolloverService {
	return &RolloverService{
		budgets:  budgets,
		store:    st,
		expenses: expenses,
		now:      time.Now,
	}
}

// NewRolloverServiceAt builds a rollover service over a combined store with
// an injectable clock. Tests use it to pin the wall-clock month.
func NewRolloverServiceAt(st store.Store, now func() time.Time) *RolloverService {
	budgets := NewBudgetService(st)
	budgets.now = now
	s := NewRolloverService(budgets, st, st)
	s.now = now
	return s
}

// CheckAndPerformRollover fetches the stored record and, when a month
// boundary was crossed, folds the previous month's unspent budget into the
// new month and persists the result. The new record is returned only after a
// successful write; on any store failure the caller should treat the stored
// state as unchanged.
func (s *RolloverService) CheckAndPerformRollover(ctx context.Context, userID string, allExpenses []core.Expense) (core.Budget, error) {
	stored, err := s.budgets.GetBudget(ctx, userID)
	if err != nil {
		return core.Budget{}, err
	}

	now := s.now()
	next, due := ApplyRollover(stored, allExpenses, core.MonthKey(now), core.PrevMonthKey(now))
	if !due {
		return stored, nil
	}

	if err := s.store.SetBudget(ctx, userID, next); err != nil {
		return core.Budget{}, fmt.Errorf("persist rollover: %w", err)
	}

	slog.InfoContext(ctx, "Budget rolled over",
		"user_id", userID,
		"from_month", stored.CurrentMonth,
		"to_month", next.CurrentMonth,
		"current_budget_cents", next.CurrentBudget.Cents)
	return next, nil
}

// RolloverFromStore is the worker entry point: it loads the user's expenses
// itself before running the rollover check.
func (s *RolloverService) RolloverFromStore(ctx context.Context, userID string) (core.Budget, error) {
	all, err := s.expenses.ListExpenses(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("list expenses: %w", err)
	}
	return s.CheckAndPerformRollover(ctx, userID, all)
}
