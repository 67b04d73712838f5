package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/store"
)

// Store is an in-process document store used for local development and tests.
type Store struct {
	mu      sync.Mutex
	seq     int64
	budgets map[string]store.BudgetDoc
	items   map[string]core.Expense

	// BudgetWrites counts SetBudget calls; tests use it to assert that a
	// read path performed (or skipped) a write.
	BudgetWrites int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		budgets: make(map[string]store.BudgetDoc),
		items:   make(map[string]core.Expense),
	}
}

// SeedBudgetDoc installs a raw budget document for a user.
func (s *Store) SeedBudgetDoc(userID string, doc store.BudgetDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = doc
}

func (s *Store) GetBudgetDoc(_ context.Context, userID string) (store.BudgetDoc, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.budgets[userID]
	return doc, ok, nil
}

func (s *Store) SetBudget(_ context.Context, userID string, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.budgets[userID]
	base, current, month := b.BaseBudget.Cents, b.CurrentBudget.Cents, b.CurrentMonth
	doc.BaseBudgetCents = &base
	doc.CurrentBudgetCents = &current
	doc.CurrentMonth = &month
	s.budgets[userID] = doc
	s.BudgetWrites++
	return nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e.ID = fmt.Sprintf("mem:%d", s.seq)
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}
	s.items[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.items {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
