package firestore

import (
	"testing"

	firestore "google.golang.org/api/firestore/v1"

	"gastos/internal/core"
)

func expenseDoc(name, userID, date string, cents, createdAt int64) *firestore.Document {
	return &firestore.Document{
		Name: "projects/p/databases/(default)/documents/expenses/" + name,
		Fields: map[string]firestore.Value{
			"description": strValue("d"),
			"amount":      intValue(cents),
			"category":    strValue(string(core.Food)),
			"date":        strValue(date),
			"userId":      strValue(userID),
			"createdAt":   intValue(createdAt),
		},
	}
}

func TestAppendUserExpensesKeepsAllOwnedDocuments(t *testing.T) {
	docs := []*firestore.Document{
		expenseDoc("a", "user-1", "2026-01-05", 1000, 1),
		expenseDoc("b", "user-2", "2026-01-06", 2000, 2),
		nil,
		expenseDoc("c", "user-1", "2026-01-07", 3000, 3),
		expenseDoc("d", "user-1", "2026-01-08", 4000, 4),
	}

	out := appendUserExpenses(nil, docs, "user-1")
	if len(out) != 3 {
		t.Fatalf("expected 3 expenses for user-1, got %d", len(out))
	}
	var total int64
	for _, e := range out {
		if e.UserID != "user-1" {
			t.Errorf("expense %s belongs to %s", e.ID, e.UserID)
		}
		total += e.Amount.Cents
	}
	if total != 8000 {
		t.Errorf("expected 8000 cents across listing, got %d", total)
	}
}

func TestAppendUserExpensesAccumulatesAcrossPages(t *testing.T) {
	page1 := []*firestore.Document{expenseDoc("a", "user-1", "2026-01-05", 1000, 1)}
	page2 := []*firestore.Document{expenseDoc("b", "user-1", "2026-01-06", 2000, 2)}

	out := appendUserExpenses(nil, page1, "user-1")
	out = appendUserExpenses(out, page2, "user-1")
	if len(out) != 2 {
		t.Fatalf("expected 2 expenses across pages, got %d", len(out))
	}
}

func TestSortExpensesByCreatedAtDesc(t *testing.T) {
	expenses := []core.Expense{
		{ID: "a", CreatedAt: 1},
		{ID: "c", CreatedAt: 3},
		{ID: "b", CreatedAt: 2},
	}

	sortExpensesByCreatedAtDesc(expenses)

	want := []string{"c", "b", "a"}
	for i, id := range want {
		if expenses[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, expenses[i].ID)
		}
	}
}

func TestDecodeExpense(t *testing.T) {
	doc := expenseDoc("exp-1", "user-1", "2026-01-05", 1250, 99)

	e := decodeExpense(doc)
	if e.ID != "exp-1" {
		t.Errorf("expected ID exp-1, got %s", e.ID)
	}
	if e.Amount.Cents != 1250 || e.CreatedAt != 99 {
		t.Errorf("unexpected decode: %+v", e)
	}
	if e.Category != core.Food || e.Date != "2026-01-05" {
		t.Errorf("unexpected decode: %+v", e)
	}
}
