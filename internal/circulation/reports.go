package circulation

import (
	"context"
	"sort"
	"time"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
	"github.com/mrlokans/circulation/internal/membership"
)

// OverdueLoan is an open loan past its due date.
type OverdueLoan struct {
	Loan     entities.Loan `json:"loan"`
	DaysLate int           `json:"days_late"`
}

// OverdueReport lists open loans due before asOf, most days late first.
func (s *Service) OverdueReport(ctx context.Context, asOf time.Time) ([]OverdueLoan, error) {
	open, err := s.ledger.OpenLoans(ctx)
	if err != nil {
		return nil, errs.Normalize(err)
	}

	report := make([]OverdueLoan, 0)
	for _, l := range open {
		if days := fines.DaysLate(l.DueDate, asOf); days > 0 {
			report = append(report, OverdueLoan{Loan: l, DaysLate: days})
		}
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].DaysLate > report[j].DaysLate
	})
	return report, nil
}

// UserActivity counts borrowers overall and per role.
type UserActivity struct {
	Total    int64                   `json:"total"`
	Active   int64                   `json:"active"`
	Inactive int64                   `json:"inactive"`
	ByRole   map[entities.Role]int64 `json:"by_role"`
}

func (s *Service) UserActivityReport(ctx context.Context) (*UserActivity, error) {
	counts, err := s.members.CountByStatus(ctx)
	if err != nil {
		return nil, errs.Normalize(err)
	}

	report := &UserActivity{ByRole: make(map[entities.Role]int64, len(entities.Roles))}
	for _, r := range entities.Roles {
		report.ByRole[r] = 0
	}
	for _, c := range counts {
		report.Total += c.Count
		report.ByRole[c.Role] += c.Count
		if c.Active {
			report.Active += c.Count
		} else {
			report.Inactive += c.Count
		}
	}
	return report, nil
}

// StatusDistributionReport counts borrowers by role and active flag.
func (s *Service) StatusDistributionReport(ctx context.Context) ([]membership.StatusCount, error) {
	counts, err := s.members.CountByStatus(ctx)
	return counts, errs.Normalize(err)
}

type LibrarianEntry struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

type LibrarianSummary struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	Inactive   int              `json:"inactive"`
	Librarians []LibrarianEntry `json:"librarians"`
}

func (s *Service) LibrarianReport(ctx context.Context) (*LibrarianSummary, error) {
	librarians, err := s.members.ListByRole(ctx, entities.RoleLibrarian)
	if err != nil {
		return nil, errs.Normalize(err)
	}

	report := &LibrarianSummary{
		Total:      len(librarians),
		Librarians: make([]LibrarianEntry, 0, len(librarians)),
	}
	for _, l := range librarians {
		if l.Active {
			report.Active++
		} else {
			report.Inactive++
		}
		report.Librarians = append(report.Librarians, LibrarianEntry{
			ID:       l.ID,
			Name:     l.Name,
			Username: l.Username,
			Active:   l.Active,
		})
	}
	return report, nil
}

// Summary is a snapshot of the whole collection.
type Summary struct {
	AsOf           string `json:"as_of"`
	BooksTotal     int64  `json:"books_total"`
	BooksAvailable int64  `json:"books_available"`
	BooksOnLoan    int64  `json:"books_on_loan"`
	OpenLoans      int64  `json:"open_loans"`
	OverdueLoans   int64  `json:"overdue_loans"`
	ClosedLoans    int64  `json:"closed_loans"`
	FinesCollected int64  `json:"fines_collected"`
}

func (s *Service) CirculationSummary(ctx context.Context, asOf time.Time) (*Summary, error) {
	total, available, err := s.catalog.Counts(ctx)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	totals, err := s.ledger.Totals(ctx)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	overdue, err := s.OverdueReport(ctx, asOf)
	if err != nil {
		return nil, err
	}

	return &Summary{
		AsOf:           fines.Date(asOf).Format(time.DateOnly),
		BooksTotal:     total,
		BooksAvailable: available,
		BooksOnLoan:    total - available,
		OpenLoans:      totals.OpenLoans,
		OverdueLoans:   int64(len(overdue)),
		ClosedLoans:    totals.ClosedLoans,
		FinesCollected: totals.FinesCollected,
	}, nil
}
