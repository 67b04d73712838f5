package core

import (
	"fmt"
	"time"
)

// MonthKey returns the "YYYY-MM" key for t in its location. Months are
// zero-padded so lexical and chronological ordering coincide.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// PrevMonthKey returns the key of the month immediately preceding t's month,
// rolling back the year when t falls in January.
func PrevMonthKey(t time.Time) string {
	year, month := t.Year(), int(t.Month())
	month--
	if month < 1 {
		month = 12
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// CurrentMonthKey returns the wall-clock month key in local time.
func CurrentMonthKey() string {
	return MonthKey(time.Now())
}

// PreviousMonthKey returns the key of the month before the wall-clock month.
func PreviousMonthKey() string {
	return PrevMonthKey(time.Now())
}

// ExpenseMonth extracts the "YYYY-MM" prefix of an expense date string. The
// input is not validated: a malformed date yields a key that matches nothing.
func ExpenseMonth(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
