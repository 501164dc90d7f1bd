// Package circulation implements the library use-cases on top of the
// catalog, membership and loan ledger: issuing, returning, renewing, wishlist
// promotion, notifications and reports.
//
// Each mutating use-case runs in one database transaction, so a wishlist is
// only trimmed when the loan it promotes actually commits.
//
// # Usage
//
//	svc := circulation.NewService(circulation.Config{
//		DB: db, Catalog: books, Members: members, Ledger: loans, Audit: auditor,
//	})
//	loan, err := svc.IssueToStudent(circulation.WithActor(ctx, librarianID), studentID, bookID)
package circulation

import (
	"context"
	"time"

	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
	"github.com/mrlokans/circulation/internal/ledger"
	"github.com/mrlokans/circulation/internal/membership"
)

type Config struct {
	DB      *database.Database
	Catalog *catalog.Service
	Members *membership.Service
	Ledger  *ledger.Service

	// Audit may be nil.
	Audit *audit.Service

	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	db      *database.Database
	catalog *catalog.Service
	members *membership.Service
	ledger  *ledger.Service
	audit   *audit.Service
	now     func() time.Time
}

func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:      cfg.DB,
		catalog: cfg.Catalog,
		members: cfg.Members,
		ledger:  cfg.Ledger,
		audit:   cfg.Audit,
		now:     now,
	}
}

// Today is the current civil date.
func (s *Service) Today() time.Time {
	return fines.Date(s.now())
}

// IssueToStudent lends bookID to an active student and drops the book from
// the student's wishlist.
func (s *Service) IssueToStudent(ctx context.Context, studentID, bookID uint) (*entities.Loan, error) {
	return s.issue(ctx, studentID, bookID, false)
}

// IssueFromWishlist is IssueToStudent for a book picked from the wishlist. The
// book's availability is read again inside the transaction; a book taken in
// the meantime fails with errs.ErrUnavailable.
func (s *Service) IssueFromWishlist(ctx context.Context, studentID, bookID uint) (*entities.Loan, error) {
	return s.issue(ctx, studentID, bookID, true)
}

func (s *Service) issue(ctx context.Context, studentID, bookID uint, recheck bool) (*entities.Loan, error) {
	var loan *entities.Loan
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.requireBorrower(ctx, studentID); err != nil {
			return err
		}

		if recheck {
			book, err := s.catalog.Get(ctx, bookID)
			if err != nil {
				return err
			}
			if !book.Available {
				return errs.Unavailable("book %d was borrowed in the meantime", bookID)
			}
		}

		var err error
		loan, err = s.ledger.Issue(ctx, studentID, bookID, s.Today())
		if err != nil {
			return err
		}
		return s.members.WishlistRemove(ctx, studentID, bookID)
	})
	if err != nil {
		return nil, errs.Normalize(err)
	}

	s.audit.LogLoan(s.actor(ctx, studentID), "issue", loan)
	return loan, nil
}

// requireBorrower checks that id is an active borrower whose role may borrow.
func (s *Service) requireBorrower(ctx context.Context, id uint) error {
	borrower, err := s.members.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(borrower.Role, ActionBorrow); err != nil {
		return err
	}
	if !borrower.Active {
		return errs.NotEligible("borrower %d is inactive", id)
	}
	return nil
}

// Return closes the borrower's loan of bookID today and reports the fine.
func (s *Service) Return(ctx context.Context, borrowerID, bookID uint) (*entities.Loan, fines.Amount, error) {
	loan, fine, err := s.ledger.Return(ctx, borrowerID, bookID, s.Today())
	if err != nil {
		return nil, 0, errs.Normalize(err)
	}
	s.audit.LogLoan(s.actor(ctx, borrowerID), "return", loan)
	return loan, fine, nil
}

// Renew extends the borrower's loan of bookID from today.
func (s *Service) Renew(ctx context.Context, borrowerID, bookID uint) (*entities.Loan, error) {
	loan, err := s.ledger.Renew(ctx, borrowerID, bookID, s.Today())
	if err != nil {
		return nil, errs.Normalize(err)
	}
	s.audit.LogLoan(s.actor(ctx, borrowerID), "renew", loan)
	return loan, nil
}

// History returns the borrower's loans matching status and text, newest
// first.
func (s *Service) History(ctx context.Context, borrowerID uint, status ledger.Status, text string) ([]entities.Loan, error) {
	loans, err := s.ledger.History(ctx, borrowerID)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	return ledger.Filter(loans, status, text, s.Today()), nil
}

// WishlistAdd puts an existing book on the borrower's wishlist.
func (s *Service) WishlistAdd(ctx context.Context, borrowerID, bookID uint) error {
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		borrower, err := s.members.Get(ctx, borrowerID)
		if err != nil {
			return err
		}
		if err := Authorize(borrower.Role, ActionBorrow); err != nil {
			return err
		}
		if _, err := s.catalog.Get(ctx, bookID); err != nil {
			return err
		}
		return s.members.WishlistAdd(ctx, borrowerID, bookID)
	})
	if err != nil {
		return errs.Normalize(err)
	}
	s.audit.LogWishlist(borrowerID, "wishlist_add", bookID)
	return nil
}

// WishlistRemove takes bookID off the wishlist. Removing an absent book is a
// no-op.
func (s *Service) WishlistRemove(ctx context.Context, borrowerID, bookID uint) error {
	if err := s.members.WishlistRemove(ctx, borrowerID, bookID); err != nil {
		return errs.Normalize(err)
	}
	s.audit.LogWishlist(borrowerID, "wishlist_remove", bookID)
	return nil
}

// Wishlist returns the wishlisted book IDs in insertion order.
func (s *Service) Wishlist(ctx context.Context, borrowerID uint) ([]uint, error) {
	ids, err := s.members.Wishlist(ctx, borrowerID)
	return ids, errs.Normalize(err)
}

// WishlistBooks resolves the wishlist to books. Books removed from the
// catalog are skipped.
func (s *Service) WishlistBooks(ctx context.Context, borrowerID uint) ([]entities.Book, error) {
	ids, err := s.Wishlist(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	books, err := s.catalog.GetMany(ctx, ids)
	return books, errs.Normalize(err)
}

func (s *Service) actor(ctx context.Context, fallback uint) uint {
	if id := ActorFrom(ctx); id != 0 {
		return id
	}
	return fallback
}
