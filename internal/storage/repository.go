package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the document-store ports over a local SQLite
// database. The per-user budget document maps to one row of user_budgets
// with nullable columns mirroring the document's optional fields.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) GetBudgetDoc(ctx context.Context, userID string) (store.BudgetDoc, bool, error) {
	var base, current, monthly sql.NullInt64
	var month sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT base_budget_cents, current_budget_cents, current_month, monthly_budget_cents
		 FROM user_budgets WHERE user_id = ?`, userID,
	).Scan(&base, &current, &month, &monthly)
	if errors.Is(err, sql.ErrNoRows) {
		return store.BudgetDoc{}, false, nil
	}
	if err != nil {
		return store.BudgetDoc{}, false, fmt.Errorf("get budget row: %w", err)
	}

	var doc store.BudgetDoc
	if base.Valid {
		doc.BaseBudgetCents = &base.Int64
	}
	if current.Valid {
		doc.CurrentBudgetCents = &current.Int64
	}
	if month.Valid {
		doc.CurrentMonth = &month.String
	}
	if monthly.Valid {
		doc.MonthlyBudgetCents = &monthly.Int64
	}
	return doc, true, nil
}

// SetBudget upserts the three budget columns. Columns outside the write
// (the legacy monthly_budget_cents) keep whatever value they hold.
func (r *SQLiteRepository) SetBudget(ctx context.Context, userID string, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_budgets (user_id, base_budget_cents, current_budget_cents, current_month)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   base_budget_cents = excluded.base_budget_cents,
		   current_budget_cents = excluded.current_budget_cents,
		   current_month = excluded.current_month`,
		userID, b.BaseBudget.Cents, b.CurrentBudget.Cents, b.CurrentMonth,
	)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, description, amount_cents, category, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Description, e.Amount.Cents, string(e.Category), e.Date, e.CreatedAt,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, rowID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount_cents, category, date, created_at
		 FROM expenses WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			rowID    int64
			e        core.Expense
			category string
		)
		if err := rows.Scan(&rowID, &e.UserID, &e.Description, &e.Amount.Cents, &category, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = strconv.FormatInt(rowID, 10)
		e.Category = core.Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}
