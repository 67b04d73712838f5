package http

import (
	"errors"
	"log/slog"
	"net/http"

	"gastos/internal/auth"
	"gastos/internal/core"
)

// BudgetResponse is the wire form of a budget record. Amounts are cents.
type BudgetResponse struct {
	BaseBudgetCents    int64  `json:"baseBudgetCents"`
	CurrentBudgetCents int64  `json:"currentBudgetCents"`
	CurrentMonth       string `json:"currentMonth"`
}

type setBudgetRequest struct {
	Amount string `json:"amount"`
}

func budgetResponse(b core.Budget) BudgetResponse {
	return BudgetResponse{
		BaseBudgetCents:    b.BaseBudget.Cents,
		CurrentBudgetCents: b.CurrentBudget.Cents,
		CurrentMonth:       b.CurrentMonth,
	}
}

// handleGetBudget returns the caller's budget record, performing the month
// rollover first when the stored month is stale.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	budget, err := s.rollover.RolloverFromStore(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget read failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load budget")
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse(budget))
}

// handleSetBudget replaces the caller's base budget. The current budget is
// reset to the same amount; the stored month is preserved.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	budget, err := s.budgets.SetBaseBudget(r.Context(), userID, core.Money{Cents: cents})
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		slog.ErrorContext(r.Context(), "Budget write failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, budgetResponse(budget))
}
