package core

import (
	"testing"
	"time"
)

func TestMonthKey(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero-pads single digit months", time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), "2026-02"},
		{"double digit month", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), "2025-11"},
		{"december", time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "2024-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthKey(tt.t); got != tt.want {
				t.Errorf("MonthKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrevMonthKey(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"january rolls back to december of prior year", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "2025-12"},
		{"march yields february of same year", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "2026-02"},
		{"november yields october", time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), "2025-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrevMonthKey(tt.t); got != tt.want {
				t.Errorf("PrevMonthKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpenseMonth(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"well-formed date", "2026-01-15", "2026-01"},
		{"exact month string", "2026-01", "2026-01"},
		{"short malformed date passes through", "2026", "2026"},
		{"empty date", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpenseMonth(tt.date); got != tt.want {
				t.Errorf("ExpenseMonth(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.5", 50, false},
		{".99", 99, false},
		{"0", 0, false},
		{"12.345", 0, true},
		{"-3", 0, true},
		{"5.-1", 0, true},
		{"5.+1", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Description: "Lunch",
		Amount:      Money{Cents: 1250},
		Category:    Food,
		Date:        "2026-08-15",
		UserID:      "u1",
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{"valid expense", func(e *Expense) {}, nil},
		{"empty description", func(e *Expense) { e.Description = "  " }, ErrEmptyDescription},
		{"negative amount", func(e *Expense) { e.Amount.Cents = -1 }, ErrInvalidAmount},
		{"zero amount is allowed", func(e *Expense) { e.Amount.Cents = 0 }, nil},
		{"unknown category", func(e *Expense) { e.Category = "Pets" }, ErrInvalidCategory},
		{"malformed date", func(e *Expense) { e.Date = "15/08/2026" }, ErrInvalidDate},
		{"missing user", func(e *Expense) { e.UserID = "" }, ErrMissingUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
