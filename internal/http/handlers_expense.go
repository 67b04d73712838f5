package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/store"
)

// ExpenseResponse is the wire form of a recorded expense. Amounts are cents.
type ExpenseResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	CreatedAt   int64  `json:"createdAt"`
}

type createExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

func expenseResponse(e core.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

// handleListExpenses returns the caller's expenses, newest first. An
// optional ?month=YYYY-MM query restricts the listing to one month.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	month := r.URL.Query().Get("month")
	expenses, err := s.expenses.ListExpenses(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	expense := core.Expense{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    core.Category(req.Category),
		Date:        date,
		UserID:      userID,
	}

	created, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		if isValidationErr(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Expense create failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, expenseResponse(created))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense id")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Expense delete failed", "error", err, "user_id", userID, "expense_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

func isValidationErr(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrDescriptionLong) ||
		errors.Is(err, core.ErrMissingUser)
}
