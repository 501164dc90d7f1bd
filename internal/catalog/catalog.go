// Package catalog owns book records and their availability flag.
//
// The flag is only ever flipped by the loan ledger through MarkBorrowed and
// MarkReturned, both guarded conditional updates, so it always agrees with
// the set of open loans.
package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
)

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{db: db}
}

// AddBook creates an available book. Title is required.
func (s *Service) AddBook(ctx context.Context, title, author, genre string) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.Validation("title is required")
	}

	book := &entities.Book{
		Title:     title,
		Author:    strings.TrimSpace(author),
		Genre:     strings.TrimSpace(genre),
		Available: true,
	}
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Create(book).Error
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Get returns a book by ID.
func (s *Service) Get(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return notFound(db.First(&book, id).Error, id)
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetMany returns the books with the given IDs in the order of ids. Unknown
// IDs are skipped.
func (s *Service) GetMany(ctx context.Context, ids []uint) ([]entities.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []entities.Book
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Find(&found).Error
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]entities.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	books := make([]entities.Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// List returns every book ordered by title.
func (s *Service) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Order("title ASC, id ASC").Find(&books).Error
	})
	return books, err
}

// FindAvailable returns available books ordered by title. A non-empty filter
// keeps books whose title, author or genre contains it, ignoring case.
func (s *Service) FindAvailable(ctx context.Context, filter string) ([]entities.Book, error) {
	var books []entities.Book
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		q := db.Where("is_available = ?", true)
		if filter = strings.TrimSpace(filter); filter != "" {
			pattern := "%" + escapeLike(strings.ToLower(filter)) + "%"
			q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(genre) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
		return q.Order("title ASC, id ASC").Find(&books).Error
	})
	return books, err
}

// RemoveBook deletes a book that has no open loan.
func (s *Service) RemoveBook(ctx context.Context, id uint) error {
	return s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.Query(ctx, func(db *gorm.DB) error {
			var book entities.Book
			if err := notFound(db.First(&book, id).Error, id); err != nil {
				return err
			}

			var open int64
			err := db.Model(&entities.Loan{}).
				Where("book_id = ? AND return_date IS NULL", id).
				Count(&open).Error
			if err != nil {
				return err
			}
			if open > 0 {
				return errs.Conflict("book %d is on loan", id)
			}

			return db.Delete(&entities.Book{}, id).Error
		})
	})
}

// MarkBorrowed flips an available book to unavailable. It fails with
// errs.ErrUnavailable if the book was already out, which makes it the single
// check-then-act step of issuing.
func (s *Service) MarkBorrowed(ctx context.Context, id uint) error {
	return s.setAvailability(ctx, id, false)
}

// MarkReturned flips a borrowed book back to available.
func (s *Service) MarkReturned(ctx context.Context, id uint) error {
	return s.setAvailability(ctx, id, true)
}

func (s *Service) setAvailability(ctx context.Context, id uint, available bool) error {
	return s.db.Query(ctx, func(db *gorm.DB) error {
		res := db.Model(&entities.Book{}).
			Where("id = ? AND is_available = ?", id, !available).
			Update("is_available", available)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}

		var book entities.Book
		if err := notFound(db.First(&book, id).Error, id); err != nil {
			return err
		}
		if !available {
			return errs.Unavailable("book %d is already on loan", id)
		}
		return errs.Conflict("book %d is not on loan", id)
	})
}

// Counts returns the number of books and how many of them are available.
func (s *Service) Counts(ctx context.Context) (total, available int64, err error) {
	err = s.db.Query(ctx, func(db *gorm.DB) error {
		if err := db.Model(&entities.Book{}).Count(&total).Error; err != nil {
			return err
		}
		return db.Model(&entities.Book{}).Where("is_available = ?", true).Count(&available).Error
	})
	return total, available, err
}

func notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("book", id)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
