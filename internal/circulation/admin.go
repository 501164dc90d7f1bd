package circulation

import (
	"context"
	"fmt"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
)

// AddBook adds a book to the catalog.
func (s *Service) AddBook(ctx context.Context, title, author, genre string) (*entities.Book, error) {
	book, err := s.catalog.AddBook(ctx, title, author, genre)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	s.audit.LogCatalog(ActorFrom(ctx), "book_add", book.ID, fmt.Sprintf("Added %q by %s", book.Title, book.Author))
	return book, nil
}

// RemoveBook deletes a book that nobody holds.
func (s *Service) RemoveBook(ctx context.Context, bookID uint) error {
	if err := s.catalog.RemoveBook(ctx, bookID); err != nil {
		return errs.Normalize(err)
	}
	s.audit.LogCatalog(ActorFrom(ctx), "book_remove", bookID, fmt.Sprintf("Removed book %d", bookID))
	return nil
}

// Register creates a borrower account.
func (s *Service) Register(ctx context.Context, name, username, password string, role entities.Role) (*entities.Borrower, error) {
	borrower, err := s.members.Register(ctx, name, username, password, role)
	if err != nil {
		return nil, errs.Normalize(err)
	}
	s.audit.LogMembership(s.actor(ctx, borrower.ID), "register", borrower.ID,
		fmt.Sprintf("Registered %s as %s", borrower.Username, borrower.Role))
	return borrower, nil
}

// SetActive enables or disables a borrower.
func (s *Service) SetActive(ctx context.Context, borrowerID uint, active bool) error {
	if err := s.members.SetActive(ctx, borrowerID, active); err != nil {
		return errs.Normalize(err)
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	s.audit.LogMembership(ActorFrom(ctx), action, borrowerID, fmt.Sprintf("%sd borrower %d", action, borrowerID))
	return nil
}
