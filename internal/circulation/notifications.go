package circulation

import (
	"context"
	"time"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
)

// WishlistNotifications returns the wishlisted books that can be borrowed
// right now, in wishlist order.
func (s *Service) WishlistNotifications(ctx context.Context, borrowerID uint) ([]entities.Book, error) {
	books, err := s.WishlistBooks(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	available := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if b.Available {
			available = append(available, b)
		}
	}
	return available, nil
}

// LoanNotice is an open loan with how far it is past due.
type LoanNotice struct {
	Loan     entities.Loan `json:"loan"`
	DaysLate int           `json:"days_late"`
	// DaysLeft is the number of days until the due date; 0 once overdue.
	DaysLeft int `json:"days_left"`
}

// Notifications is everything a borrower should be told on login.
type Notifications struct {
	Loans             []LoanNotice    `json:"loans"`
	AvailableWishlist []entities.Book `json:"available_wishlist"`
}

// BorrowerNotifications collects the borrower's open loans and the
// wishlisted books that are available as of asOf.
func (s *Service) BorrowerNotifications(ctx context.Context, borrowerID uint, asOf time.Time) (*Notifications, error) {
	if _, err := s.members.Get(ctx, borrowerID); err != nil {
		return nil, errs.Normalize(err)
	}

	open, err := s.ledger.OpenLoansFor(ctx, borrowerID)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	available, err := s.WishlistNotifications(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	notices := make([]LoanNotice, 0, len(open))
	for _, l := range open {
		notices = append(notices, LoanNotice{
			Loan:     l,
			DaysLate: fines.DaysLate(l.DueDate, asOf),
			DaysLeft: fines.DaysLate(asOf, l.DueDate),
		})
	}
	return &Notifications{Loans: notices, AvailableWishlist: available}, nil
}

// WishlistHolders returns the active students with a non-empty wishlist.
func (s *Service) WishlistHolders(ctx context.Context) ([]entities.Borrower, error) {
	holders, err := s.members.WishlistHolders(ctx)
	return holders, errs.Normalize(err)
}
