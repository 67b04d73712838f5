package store

import (
	"context"
	"errors"

	"gastos/internal/core"
)

// ErrNotFound is returned when a requested expense does not exist.
var ErrNotFound = errors.New("not found")

// BudgetDoc is the raw per-user budget document as persisted. Every field is
// optional so the decoding layer can distinguish the modern three-field
// shape, the legacy single-field shape and partially filled records.
type BudgetDoc struct {
	BaseBudgetCents    *int64
	CurrentBudgetCents *int64
	CurrentMonth       *string
	// MonthlyBudgetCents is the legacy single-field format, migrated on read.
	MonthlyBudgetCents *int64
}

// Ports for outbound document-store adapters.
type (
	// BudgetStore reads and writes the per-user budget document.
	BudgetStore interface {
		// GetBudgetDoc returns the raw document and whether it exists.
		// An absent document is not an error.
		GetBudgetDoc(ctx context.Context, userID string) (BudgetDoc, bool, error)
		// SetBudget merge-writes the three budget fields. Fields not part of
		// the write are left untouched on the underlying document.
		SetBudget(ctx context.Context, userID string, b core.Budget) error
	}

	// ExpenseStore persists expenses keyed by an opaque store-assigned ID.
	ExpenseStore interface {
		// CreateExpense assigns the ID and returns the stored expense.
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// DeleteExpense removes a user's expense by ID.
		DeleteExpense(ctx context.Context, userID, id string) error
		// ListExpenses returns all of a user's expenses ordered by CreatedAt
		// descending.
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	}

	// Store is the combined surface a backend must provide.
	Store interface {
		BudgetStore
		ExpenseStore
	}
)
