// Package fines computes late-return fines.
//
// Fines depend only on calendar days: a book due on the 10th and returned any
// time on the 11th is one day late regardless of the hour.
package fines

import "time"

// Rate is the fine in currency units for each day a loan is returned late.
const Rate Amount = 5

// Amount is a fine in whole currency units.
type Amount int64

const secondsPerDay = 24 * 60 * 60

// Calculator applies a per-day rate. The zero value uses Rate.
type Calculator struct {
	RatePerDay Amount
}

// Compute returns the fine for a loan due on due and returned on returned.
func (c Calculator) Compute(due, returned time.Time) Amount {
	rate := c.RatePerDay
	if rate <= 0 {
		rate = Rate
	}
	return Amount(DaysLate(due, returned)) * rate
}

// Compute returns the fine at the default Rate.
func Compute(due, returned time.Time) Amount {
	return Calculator{}.Compute(due, returned)
}

// DaysLate is the number of whole calendar days asOf falls after due, never
// negative.
func DaysLate(due, asOf time.Time) int {
	days := epochDays(asOf) - epochDays(due)
	if days < 0 {
		return 0
	}
	return int(days)
}

// Date truncates t to its calendar date at UTC midnight. Loan dates are
// always stored in this form.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func epochDays(t time.Time) int64 {
	return Date(t).Unix() / secondsPerDay
}
