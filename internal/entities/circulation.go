package entities

import (
	"strings"
	"time"
)

// Role is the borrower role tag. Behaviour that differs per role is looked
// up in a table keyed on this value rather than spread across types.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleStudent   Role = "Student"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleLibrarian, RoleStudent}

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512;not null" json:"title"`
	Author    string    `gorm:"index;size:256" json:"author"`
	Genre     string    `gorm:"size:128" json:"genre"`
	Available bool      `gorm:"column:is_available;index;not null;default:true" json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Borrower is any registered account. Students borrow; staff roles manage.
type Borrower struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Role         Role      `gorm:"index;size:20;not null" json:"role"`
	Active       bool      `gorm:"index;not null;default:true" json:"active"`
	Wishlist     string    `gorm:"size:2048;not null;default:''" json:"-"` // comma-joined book ids
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Loan is one borrowing of a book. A nil ReturnDate means the loan is open.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BorrowerID uint       `gorm:"column:student_id;index;not null" json:"borrower_id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	BorrowDate time.Time  `gorm:"index;not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"index;not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       int64      `gorm:"not null;default:0" json:"fine"`
	Book       *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Borrower   *Borrower  `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

// IsOpen reports whether the loan has not been returned yet.
func (l Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

func (Book) TableName() string {
	return "books"
}

func (Borrower) TableName() string {
	return "users"
}

func (Loan) TableName() string {
	return "borrowed_books"
}
