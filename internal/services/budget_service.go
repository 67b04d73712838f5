package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/store"
)

// budgetShape classifies a raw budget document.
type budgetShape int

const (
	budgetAbsent budgetShape = iota
	budgetLegacy
	budgetModern
)

// BudgetService reads and writes the per-user budget record, transparently
// migrating the legacy single-field format on first read.
type BudgetService struct {
	store store.BudgetStore
	now   func() time.Time
}

func NewBudgetService(st store.BudgetStore) *BudgetService {
	return &BudgetService{store: st, now: time.Now}
}

func classifyBudgetDoc(doc store.BudgetDoc, found bool) budgetShape {
	switch {
	case !found:
		return budgetAbsent
	case doc.BaseBudgetCents == nil && doc.CurrentBudgetCents == nil &&
		doc.CurrentMonth == nil && doc.MonthlyBudgetCents != nil:
		return budgetLegacy
	default:
		return budgetModern
	}
}

// GetBudget fetches the user's budget record. An absent document yields the
// zero-valued default stamped with the current month, without writing. A
// legacy document is migrated and the migrated record persisted. A modern
// document with missing fields is filled in the returned value only.
func (s *BudgetService) GetBudget(ctx context.Context, userID string) (core.Budget, error) {
	doc, found, err := s.store.GetBudgetDoc(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget doc: %w", err)
	}

	nowMonth := core.MonthKey(s.now())

	switch classifyBudgetDoc(doc, found) {
	case budgetAbsent:
		return core.Budget{CurrentMonth: nowMonth}, nil

	case budgetLegacy:
		migrated := core.Budget{
			BaseBudget:    core.Money{Cents: *doc.MonthlyBudgetCents},
			CurrentBudget: core.Money{Cents: *doc.MonthlyBudgetCents},
			CurrentMonth:  nowMonth,
		}
		if err := s.store.SetBudget(ctx, userID, migrated); err != nil {
			return core.Budget{}, fmt.Errorf("migrate legacy budget: %w", err)
		}
		slog.InfoContext(ctx, "Migrated legacy budget record",
			"user_id", userID,
			"monthly_budget_cents", *doc.MonthlyBudgetCents)
		return migrated, nil

	default:
		b := core.Budget{CurrentMonth: nowMonth}
		if doc.BaseBudgetCents != nil {
			b.BaseBudget = core.Money{Cents: *doc.BaseBudgetCents}
		}
		if doc.CurrentBudgetCents != nil {
			b.CurrentBudget = core.Money{Cents: *doc.CurrentBudgetCents}
		}
		if doc.CurrentMonth != nil {
			b.CurrentMonth = *doc.CurrentMonth
		}
		return b, nil
	}
}

// SetBaseBudget stores a new nominal monthly budget. The effective budget is
// reset to the same amount and the stored month is preserved.
func (s *BudgetService) SetBaseBudget(ctx context.Context, userID string, amount core.Money) (core.Budget, error) {
	if err := amount.Validate(); err != nil {
		return core.Budget{}, err
	}

	existing, err := s.GetBudget(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load existing budget: %w", err)
	}

	next := core.Budget{
		BaseBudget:    amount,
		CurrentBudget: amount,
		CurrentMonth:  existing.CurrentMonth,
	}
	if err := s.store.SetBudget(ctx, userID, next); err != nil {
		return core.Budget{}, fmt.Errorf("set base budget: %w", err)
	}

	slog.InfoContext(ctx, "Base budget updated",
		"user_id", userID,
		"base_budget_cents", amount.Cents,
		"current_month", next.CurrentMonth)
	return next, nil
}
