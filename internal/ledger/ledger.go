// Package ledger records loans: issuing a book, returning it with a fine and
// renewing its due date.
//
// Every mutation runs in one immediate SQLite transaction. Issue flips the
// book's availability through catalog.MarkBorrowed, a guarded update that
// only one of several concurrent issues can win; the partial unique index on
// open loans backs it up.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
	"github.com/mrlokans/circulation/internal/membership"
)

// DefaultLoanPeriod is the number of days between borrowing and the due date.
const DefaultLoanPeriod = 14

type Options struct {
	LoanPeriodDays int
	FineRate       fines.Amount
}

type Service struct {
	db         *database.Database
	catalog    *catalog.Service
	members    *membership.Service
	fines      fines.Calculator
	loanPeriod int
}

func NewService(db *database.Database, books *catalog.Service, members *membership.Service, opts Options) *Service {
	period := opts.LoanPeriodDays
	if period <= 0 {
		period = DefaultLoanPeriod
	}
	return &Service{
		db:         db,
		catalog:    books,
		members:    members,
		fines:      fines.Calculator{RatePerDay: opts.FineRate},
		loanPeriod: period,
	}
}

// LoanPeriod returns the configured loan length in days.
func (s *Service) LoanPeriod() int {
	return s.loanPeriod
}

// Issue lends bookID to borrowerID as of today.
func (s *Service) Issue(ctx context.Context, borrowerID, bookID uint, today time.Time) (*entities.Loan, error) {
	day := fines.Date(today)
	loan := &entities.Loan{
		BorrowerID: borrowerID,
		BookID:     bookID,
		BorrowDate: day,
		DueDate:    day.AddDate(0, 0, s.loanPeriod),
	}

	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		borrower, err := s.members.Get(ctx, borrowerID)
		if err != nil {
			return err
		}
		if !borrower.Active {
			return errs.NotEligible("borrower %d is inactive", borrowerID)
		}

		book, err := s.catalog.Get(ctx, bookID)
		if err != nil {
			return err
		}
		if err := s.catalog.MarkBorrowed(ctx, bookID); err != nil {
			return err
		}

		err = s.db.Query(ctx, func(db *gorm.DB) error {
			err := db.Omit("Book", "Borrower").Create(loan).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Unavailable("book %d is already on loan", bookID)
			}
			return err
		})
		if err != nil {
			return err
		}

		book.Available = false
		loan.Book = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes the borrower's open loan of bookID as of today and returns
// it with the fine charged.
func (s *Service) Return(ctx context.Context, borrowerID, bookID uint, today time.Time) (*entities.Loan, fines.Amount, error) {
	day := fines.Date(today)

	var loan entities.Loan
	var fine fines.Amount
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.findOpen(ctx, borrowerID, bookID, &loan); err != nil {
			return err
		}

		fine = s.fines.Compute(loan.DueDate, day)
		err := s.db.Query(ctx, func(db *gorm.DB) error {
			return db.Model(&entities.Loan{}).
				Where("id = ?", loan.ID).
				Updates(map[string]any{"return_date": day, "fine": int64(fine)}).Error
		})
		if err != nil {
			return err
		}
		loan.ReturnDate = &day
		loan.Fine = int64(fine)

		return s.catalog.MarkReturned(ctx, bookID)
	})
	if err != nil {
		return nil, 0, err
	}
	return &loan, fine, nil
}

// Renew moves the due date of the borrower's open loan to today plus the
// loan period. Nothing else about the loan changes.
func (s *Service) Renew(ctx context.Context, borrowerID, bookID uint, today time.Time) (*entities.Loan, error) {
	due := fines.Date(today).AddDate(0, 0, s.loanPeriod)

	var loan entities.Loan
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.findOpen(ctx, borrowerID, bookID, &loan); err != nil {
			return err
		}

		return s.db.Query(ctx, func(db *gorm.DB) error {
			var others int64
			err := db.Model(&entities.Loan{}).
				Where("book_id = ? AND student_id <> ? AND return_date IS NULL", bookID, borrowerID).
				Count(&others).Error
			if err != nil {
				return err
			}
			if others > 0 {
				return errs.Conflict("book %d is held by another borrower", bookID)
			}

			if err := db.Model(&entities.Loan{}).Where("id = ?", loan.ID).Update("due_date", due).Error; err != nil {
				return err
			}
			loan.DueDate = due
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Service) findOpen(ctx context.Context, borrowerID, bookID uint, loan *entities.Loan) error {
	return s.db.Query(ctx, func(db *gorm.DB) error {
		err := db.Preload("Book").
			Where("student_id = ? AND book_id = ? AND return_date IS NULL", borrowerID, bookID).
			First(loan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no open loan of book %d for borrower %d", errs.ErrNotFound, bookID, borrowerID)
		}
		return err
	})
}

// OpenLoansFor returns the borrower's open loans, soonest due first.
func (s *Service) OpenLoansFor(ctx context.Context, borrowerID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Preload("Book").
			Where("student_id = ? AND return_date IS NULL", borrowerID).
			Order("due_date ASC, id ASC").
			Find(&loans).Error
	})
	return loans, err
}

// History returns every loan of the borrower, newest first.
func (s *Service) History(ctx context.Context, borrowerID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Preload("Book").
			Where("student_id = ?", borrowerID).
			Order("borrow_date DESC, id DESC").
			Find(&loans).Error
	})
	return loans, err
}

// OpenLoans returns all open loans with book and borrower loaded, soonest due
// first.
func (s *Service) OpenLoans(ctx context.Context) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Preload("Book").Preload("Borrower").
			Where("return_date IS NULL").
			Order("due_date ASC, id ASC").
			Find(&loans).Error
	})
	return loans, err
}

// HasOpenLoan reports whether any borrower currently holds bookID.
func (s *Service) HasOpenLoan(ctx context.Context, bookID uint) (bool, error) {
	var n int64
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Model(&entities.Loan{}).
			Where("book_id = ? AND return_date IS NULL", bookID).
			Count(&n).Error
	})
	return n > 0, err
}

// Totals summarizes the ledger.
type Totals struct {
	OpenLoans      int64 `json:"open_loans"`
	ClosedLoans    int64 `json:"closed_loans"`
	FinesCollected int64 `json:"fines_collected"`
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		if err := db.Model(&entities.Loan{}).Where("return_date IS NULL").Count(&t.OpenLoans).Error; err != nil {
			return err
		}
		if err := db.Model(&entities.Loan{}).Where("return_date IS NOT NULL").Count(&t.ClosedLoans).Error; err != nil {
			return err
		}
		return db.Model(&entities.Loan{}).Select("COALESCE(SUM(fine), 0)").Scan(&t.FinesCollected).Error
	})
	return t, err
}
