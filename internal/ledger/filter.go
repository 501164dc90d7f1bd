package ledger

import (
	"strings"
	"time"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
)

// Status selects loans in Filter.
type Status string

const (
	StatusAll      Status = "All"
	StatusBorrowed Status = "Borrowed"
	StatusReturned Status = "Returned"
	StatusOverdue  Status = "Overdue"
)

// ParseStatus matches s case-insensitively. Blank means StatusAll.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusAll, nil
	}
	for _, st := range []Status{StatusAll, StatusBorrowed, StatusReturned, StatusOverdue} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", errs.Validation("unknown loan status %q", s)
}

// Filter keeps the loans matching status whose book title or author contains
// text, ignoring case. A loan is overdue when it is open and asOf is past its
// due date. Loans must have Book loaded for text to match.
func Filter(loans []entities.Loan, status Status, text string, asOf time.Time) []entities.Loan {
	text = strings.ToLower(strings.TrimSpace(text))
	out := make([]entities.Loan, 0, len(loans))
	for _, l := range loans {
		if !matchesStatus(l, status, asOf) {
			continue
		}
		if text != "" && !matchesText(l, text) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesStatus(l entities.Loan, status Status, asOf time.Time) bool {
	switch status {
	case StatusBorrowed:
		return l.IsOpen()
	case StatusReturned:
		return !l.IsOpen()
	case StatusOverdue:
		return IsOverdue(l, asOf)
	default:
		return true
	}
}

func matchesText(l entities.Loan, text string) bool {
	if l.Book == nil {
		return false
	}
	return strings.Contains(strings.ToLower(l.Book.Title), text) ||
		strings.Contains(strings.ToLower(l.Book.Author), text)
}

// IsOverdue reports whether an open loan is past due as of asOf.
func IsOverdue(l entities.Loan, asOf time.Time) bool {
	return l.IsOpen() && fines.DaysLate(l.DueDate, asOf) > 0
}
