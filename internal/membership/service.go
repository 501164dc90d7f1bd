// Package membership manages borrower accounts: registration, credential
// checks, the active flag and each borrower's wishlist.
//
// # Usage
//
//	members := membership.NewService(db, bcrypt.DefaultCost)
//	b, err := members.Register(ctx, "Sam", "sam", "secret", entities.RoleStudent)
//	b, err = members.Authenticate(ctx, "sam", "secret", entities.RoleStudent)
package membership

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
)

// Search fields accepted by Service.Search.
const (
	FieldName     = "name"
	FieldUsername = "username"
	FieldRole     = "role"
)

type Service struct {
	db         *database.Database
	bcryptCost int
}

func NewService(db *database.Database, bcryptCost int) *Service {
	return &Service{db: db, bcryptCost: bcryptCost}
}

// Register creates an active borrower with a hashed credential.
func (s *Service) Register(ctx context.Context, name, username, password string, role entities.Role) (*entities.Borrower, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	switch {
	case name == "":
		return nil, errs.Validation("name is required")
	case username == "":
		return nil, errs.Validation("username is required")
	case password == "":
		return nil, errs.Validation("password is required")
	}
	parsed, ok := entities.ParseRole(string(role))
	if !ok {
		return nil, errs.Validation("unknown role %q", role)
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	borrower := &entities.Borrower{
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Role:         parsed,
		Active:       true,
	}

	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.Query(ctx, func(db *gorm.DB) error {
			var existing int64
			if err := db.Model(&entities.Borrower{}).Where("username = ?", username).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return errs.Conflict("username %q is taken", username)
			}

			err := db.Create(borrower).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("username %q is taken", username)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return borrower, nil
}

// Authenticate returns the active borrower matching username and role whose
// stored hash verifies password. Every mismatch is reported as errs.ErrAuth.
func (s *Service) Authenticate(ctx context.Context, username, password string, role entities.Role) (*entities.Borrower, error) {
	var borrower entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		err := db.Where("username = ?", strings.TrimSpace(username)).First(&borrower).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrAuth
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if !borrower.Active || borrower.Role != role {
		return nil, errs.ErrAuth
	}
	if err := CheckPassword(password, borrower.PasswordHash); err != nil {
		return nil, errs.Normalize(err)
	}
	return &borrower, nil
}

// Get returns a borrower by ID.
func (s *Service) Get(ctx context.Context, id uint) (*entities.Borrower, error) {
	var borrower entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return notFound(db.First(&borrower, id).Error, id)
	})
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// List returns every borrower ordered by ID.
func (s *Service) List(ctx context.Context) ([]entities.Borrower, error) {
	var borrowers []entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Order("id ASC").Find(&borrowers).Error
	})
	return borrowers, err
}

// ListByRole returns the borrowers holding role, ordered by name.
func (s *Service) ListByRole(ctx context.Context, role entities.Role) ([]entities.Borrower, error) {
	var borrowers []entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Where("role = ?", role).Order("name ASC, id ASC").Find(&borrowers).Error
	})
	return borrowers, err
}

// Search matches text as a case-insensitive substring of the given field.
// Empty text lists everyone.
func (s *Service) Search(ctx context.Context, field, text string) ([]entities.Borrower, error) {
	var column string
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldName, "":
		column = "name"
	case FieldUsername:
		column = "username"
	case FieldRole:
		column = "role"
	default:
		return nil, errs.Validation("unknown search field %q", field)
	}

	var borrowers []entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		q := db.Model(&entities.Borrower{})
		if text = strings.TrimSpace(text); text != "" {
			q = q.Where("LOWER("+column+`) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(text))+"%")
		}
		return q.Order("id ASC").Find(&borrowers).Error
	})
	return borrowers, err
}

// SetActive enables or disables a borrower. Inactive borrowers cannot log in
// or borrow.
func (s *Service) SetActive(ctx context.Context, id uint, active bool) error {
	return s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.Query(ctx, func(db *gorm.DB) error {
			var borrower entities.Borrower
			if err := notFound(db.First(&borrower, id).Error, id); err != nil {
				return err
			}
			return db.Model(&borrower).Update("active", active).Error
		})
	})
}

// StatusCount is the number of borrowers sharing a role and active flag.
type StatusCount struct {
	Role   entities.Role `json:"role"`
	Active bool          `json:"active"`
	Count  int64         `json:"count"`
}

// CountByStatus groups borrowers by role and active flag.
func (s *Service) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Model(&entities.Borrower{}).
			Select("role, active, COUNT(*) AS count").
			Group("role, active").
			Order("role ASC, active DESC").
			Scan(&counts).Error
	})
	return counts, err
}

// WishlistHolders returns active students with a non-empty wishlist.
func (s *Service) WishlistHolders(ctx context.Context) ([]entities.Borrower, error) {
	var borrowers []entities.Borrower
	err := s.db.Query(ctx, func(db *gorm.DB) error {
		return db.Where("role = ? AND active = ? AND wishlist <> ''", entities.RoleStudent, true).
			Order("id ASC").
			Find(&borrowers).Error
	})
	return borrowers, err
}

// Wishlist returns the borrower's wishlisted book IDs in insertion order.
func (s *Service) Wishlist(ctx context.Context, borrowerID uint) ([]uint, error) {
	borrower, err := s.Get(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return ParseWishlist(borrower.Wishlist)
}

// WishlistAdd appends bookID unless it is already present.
func (s *Service) WishlistAdd(ctx context.Context, borrowerID, bookID uint) error {
	return s.updateWishlist(ctx, borrowerID, func(ids []uint) ([]uint, bool) {
		return wishlistAdd(ids, bookID)
	})
}

// WishlistRemove drops bookID if present.
func (s *Service) WishlistRemove(ctx context.Context, borrowerID, bookID uint) error {
	return s.updateWishlist(ctx, borrowerID, func(ids []uint) ([]uint, bool) {
		return wishlistRemove(ids, bookID)
	})
}

func (s *Service) updateWishlist(ctx context.Context, borrowerID uint, change func([]uint) ([]uint, bool)) error {
	return s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.Query(ctx, func(db *gorm.DB) error {
			var borrower entities.Borrower
			if err := notFound(db.First(&borrower, borrowerID).Error, borrowerID); err != nil {
				return err
			}
			ids, err := ParseWishlist(borrower.Wishlist)
			if err != nil {
				return err
			}
			ids, changed := change(ids)
			if !changed {
				return nil
			}
			return db.Model(&borrower).Update("wishlist", FormatWishlist(ids)).Error
		})
	})
}

func notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("borrower", id)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
