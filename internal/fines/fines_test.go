package fines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		want     Amount
	}{
		{"on due date", due, 0},
		{"one day late", due.AddDate(0, 0, 1), Rate},
		{"one day early", due.AddDate(0, 0, -1), 0},
		{"six days late", due.AddDate(0, 0, 6), 30},
		{"late in the evening of the due date", due.Add(23 * time.Hour), 0},
		{"early morning the next day", due.Add(25 * time.Hour), Rate},
		{"across a month boundary", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 22 * Rate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(due, tt.returned))
		})
	}
}

func TestCalculator_CustomRate(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Calculator{RatePerDay: 10}

	assert.Equal(t, Amount(30), c.Compute(due, due.AddDate(0, 0, 3)))
	assert.Equal(t, Amount(0), c.Compute(due, due))
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysLate(due, due))
	assert.Equal(t, 2, DaysLate(due, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysLate(due, due.AddDate(0, -1, 0)))
}

func TestDate(t *testing.T) {
	in := time.Date(2024, 5, 17, 18, 42, 11, 99, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), Date(in))
}
