package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/store"
	"gastos/internal/store/memory"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	mem := memory.New()
	budgets := services.NewBudgetService(mem)
	rollover := services.NewRolloverService(budgets, mem, mem)
	expenses := services.NewExpenseService(mem, nil)
	verifier := auth.NewVerifier(testSecret)

	srv := NewServer(":0", budgets, rollover, expenses, verifier, Options{})
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	return srv, mem
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return "Bearer " + raw
}

func doJSON(t *testing.T, srv *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/budget", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budget", "Bearer not-a-token", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rr.Code)
	}
}

func TestBudgetSetAndGet(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	rr := doJSON(t, srv, http.MethodPut, "/api/budget", token, `{"amount":"500.00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT budget status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp BudgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.BaseBudgetCents != 50000 || resp.CurrentBudgetCents != 50000 {
		t.Errorf("unexpected budget: %+v", resp)
	}
	if resp.CurrentMonth != core.CurrentMonthKey() {
		t.Errorf("expected current month %s, got %s", core.CurrentMonthKey(), resp.CurrentMonth)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budget", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET budget status=%d", rr.Code)
	}
	var got BudgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got != resp {
		t.Errorf("GET returned %+v, want %+v", got, resp)
	}
}

func TestBudgetInvalidAmount(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	rr := doJSON(t, srv, http.MethodPut, "/api/budget", token, `{"amount":"abc"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestBudgetRollsOverOnRead(t *testing.T) {
	srv, mem := newTestServer(t)
	token := bearer(t, "user-1")

	prevMonth := core.PreviousMonthKey()
	mem.SeedBudgetDoc("user-1", store.BudgetDoc{
		BaseBudgetCents:    int64p(50000),
		CurrentBudgetCents: int64p(50000),
		CurrentMonth:       strp(prevMonth),
	})
	if _, err := mem.CreateExpense(context.Background(), core.Expense{
		Description: "groceries",
		Amount:      core.Money{Cents: 12000},
		Category:    core.Food,
		Date:        prevMonth + "-10",
		UserID:      "user-1",
		CreatedAt:   1,
	}); err != nil {
		t.Fatalf("seeding expense: %v", err)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/budget", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp BudgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.CurrentMonth != core.CurrentMonthKey() {
		t.Errorf("expected month %s, got %s", core.CurrentMonthKey(), resp.CurrentMonth)
	}
	// 50000 base + (50000 - 12000) carried over.
	if resp.CurrentBudgetCents != 88000 {
		t.Errorf("expected 88000 cents, got %d", resp.CurrentBudgetCents)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses", token,
		`{"description":"lunch","amount":"12.50","category":"Food","date":"2026-08-12"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST expense status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created ExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.ID == "" || created.AmountCents != 1250 {
		t.Errorf("unexpected expense: %+v", created)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", token, "")
	var listed []ExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses?month=2020-01", token, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty month filter result, got %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, token, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, token, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second DELETE status=%d, want 404", rr.Code)
	}
}

func TestExpenseValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	tests := []struct {
		name string
		body string
	}{
		{"bad amount", `{"description":"x","amount":"abc","category":"Food","date":"2026-08-12"}`},
		{"bad category", `{"description":"x","amount":"1.00","category":"Groceries","date":"2026-08-12"}`},
		{"bad date", `{"description":"x","amount":"1.00","category":"Food","date":"12-08-2026"}`},
		{"empty description", `{"description":"","amount":"1.00","category":"Food","date":"2026-08-12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/expenses", token, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestExpenseOwnershipScoping(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses", bearer(t, "user-1"),
		`{"description":"lunch","amount":"12.50","category":"Food","date":"2026-08-12"}`)
	var created ExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", bearer(t, "user-2"), "")
	var listed []ExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no expenses for other user, got %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, bearer(t, "user-2"), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's expense, got %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	month := core.CurrentMonthKey()
	if rr := doJSON(t, srv, http.MethodPut, "/api/budget", token, `{"amount":"600.00"}`); rr.Code != http.StatusOK {
		t.Fatalf("PUT budget status=%d", rr.Code)
	}
	for _, body := range []string{
		`{"description":"lunch","amount":"10.00","category":"Food","date":"` + month + `-05"}`,
		`{"description":"bus","amount":"2.50","category":"Transport","date":"` + month + `-06"}`,
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/expenses", token, body); rr.Code != http.StatusCreated {
			t.Fatalf("POST expense status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET dashboard status=%d body=%s", rr.Code, rr.Body.String())
	}
	var dash DashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if dash.Month != month {
		t.Errorf("expected month %s, got %s", month, dash.Month)
	}
	if dash.SpentCents != 1250 {
		t.Errorf("expected 1250 spent, got %d", dash.SpentCents)
	}
	if dash.RemainingCents != 60000-1250 {
		t.Errorf("expected %d remaining, got %d", 60000-1250, dash.RemainingCents)
	}
	if dash.ByCategory["Food"] != 1000 || dash.ByCategory["Transport"] != 250 {
		t.Errorf("unexpected category breakdown: %+v", dash.ByCategory)
	}

	// A new expense must invalidate the cached summary.
	if rr := doJSON(t, srv, http.MethodPost, "/api/expenses", token,
		`{"description":"coffee","amount":"1.50","category":"Impulse","date":"`+month+`-07"}`); rr.Code != http.StatusCreated {
		t.Fatalf("POST expense status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", token, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if dash.SpentCents != 1400 {
		t.Errorf("expected 1400 spent after new expense, got %d", dash.SpentCents)
	}
}

func TestDashboardHistoricalMonthHasNoBudget(t *testing.T) {
	srv, _ := newTestServer(t)
	token := bearer(t, "user-1")

	if rr := doJSON(t, srv, http.MethodPut, "/api/budget", token, `{"amount":"600.00"}`); rr.Code != http.StatusOK {
		t.Fatalf("PUT budget status=%d", rr.Code)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard?month=2020-01", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET dashboard status=%d", rr.Code)
	}
	var dash DashboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if dash.Budget != (BudgetResponse{}) || dash.RemainingCents != 0 {
		t.Errorf("expected empty budget for historical month, got %+v", dash)
	}
}

func TestDashboardRejectsBadMonth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard?month=January", bearer(t, "user-1"), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func int64p(v int64) *int64 { return &v }
func strp(s string) *string { return &s }
