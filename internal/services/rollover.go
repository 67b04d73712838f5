package services

import (
	"gastos/internal/core"
)

// MonthlyExpenseTotal sums the amounts of the expenses whose date falls in
// the given "YYYY-MM" month. Expenses from any other month are excluded.
func MonthlyExpenseTotal(expenses []core.Expense, month string) core.Money {
	var total int64
	for _, e := range expenses {
		if core.ExpenseMonth(e.Date) == month {
			total += e.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

// ApplyRollover computes the successor of a stored budget record for a new
// wall-clock month. It returns the record to persist and whether a rollover
// is due at all.
//
// When the stored month already equals nowMonth nothing is due and the stored
// record is returned unchanged. Otherwise only the immediately previous
// calendar month's expenses count against the old effective budget: a
// strictly positive remainder is added on top of the base budget, while a
// zero or negative remainder resets the new month to the base budget.
// Deficits are never carried forward.
func ApplyRollover(stored core.Budget, expenses []core.Expense, nowMonth, prevMonth string) (core.Budget, bool) {
	if stored.CurrentMonth == nowMonth {
		return stored, false
	}

	spent := MonthlyExpenseTotal(expenses, prevMonth)
	remaining := stored.CurrentBudget.Cents - spent.Cents

	next := core.Budget{
		BaseBudget:    stored.BaseBudget,
		CurrentBudget: stored.BaseBudget,
		CurrentMonth:  nowMonth,
	}
	if remaining > 0 {
		next.CurrentBudget = core.Money{Cents: stored.BaseBudget.Cents + remaining}
	}
	return next, true
}
