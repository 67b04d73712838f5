package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Food      Category = "Food"
	Health    Category = "Health"
	Transport Category = "Transport"
	Leisure   Category = "Leisure"
	Fixed     Category = "Fixed Expenses"
	Impulse   Category = "Impulse"
)

type (
	Category string

	Money struct {
		Cents int64
	}

	// Expense is a single recorded expense. Date carries the calendar day the
	// expense occurred ("YYYY-MM-DD"); CreatedAt is the persistence timestamp
	// in milliseconds and is used only for ordering.
	Expense struct {
		ID          string
		Description string
		Amount      Money
		Category    Category
		Date        string
		UserID      string
		CreatedAt   int64
	}

	// Budget is the per-user budget record. CurrentBudget is the effective
	// amount for CurrentMonth and may exceed BaseBudget when a prior month's
	// surplus rolled forward.
	Budget struct {
		BaseBudget    Money
		CurrentBudget Money
		CurrentMonth  string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingUser      = errors.New("missing user id")
)

func (c Category) Valid() bool {
	switch c {
	case Food, Health, Transport, Leisure, Fixed, Impulse:
		return true
	default:
		return false
	}
}

// Categories lists the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Health, Transport, Leisure, Fixed, Impulse}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUser
	}
	return nil
}

// ParseDecimalToCents converts a decimal amount string ("12.34", "12,34" or
// "12") into cents. At most two fraction digits are accepted.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	// Digits only: ParseInt would accept a signed fraction like "-1".
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return 0, ErrInvalidAmount
		}
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return units*100 + cents, nil
}
