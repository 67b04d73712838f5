package http

import (
	"log/slog"
	"net/http"
	"regexp"

	"gastos/internal/auth"
	"gastos/internal/core"
)

// DashboardResponse summarizes a month: the effective budget record, the
// month's spend, what remains, and a per-category breakdown in cents.
type DashboardResponse struct {
	Month          string            `json:"month"`
	Budget         BudgetResponse    `json:"budget"`
	SpentCents     int64             `json:"spentCents"`
	RemainingCents int64             `json:"remainingCents"`
	ByCategory     map[string]int64  `json:"byCategory"`
	Expenses       []ExpenseResponse `json:"expenses"`
}

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = core.CurrentMonthKey()
	}
	if !monthRe.MatchString(month) {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	key := dashboardKey(userID, month)
	if cached, ok := s.dashCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	// Roll the budget forward first so a stale month never leaks into the
	// summary.
	budget, err := s.rollover.RolloverFromStore(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard budget read failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard expense list failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	var spent int64
	byCategory := make(map[string]int64)
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		spent += e.Amount.Cents
		byCategory[string(e.Category)] += e.Amount.Cents
		out = append(out, expenseResponse(e))
	}

	resp := DashboardResponse{
		Month:      month,
		SpentCents: spent,
		ByCategory: byCategory,
		Expenses:   out,
	}
	// The effective budget only applies to the month it is stamped with;
	// historical months get spend totals without a remaining figure.
	if month == budget.CurrentMonth {
		resp.Budget = budgetResponse(budget)
		resp.RemainingCents = budget.CurrentBudget.Cents - spent
	}

	s.dashCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func dashboardKey(userID, month string) string {
	return userID + ":" + month
}

// invalidateDashboards drops every cached dashboard for the user.
func (s *Server) invalidateDashboards(userID string) {
	s.dashCache.DeletePrefix(userID + ":")
}
