// Command generate_demo creates a demo library with public domain books,
// one account per role, a few students and some open and overdue loans.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db] [-password demo]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/entrypoint"
)

const defaultDemoDatabasePath = "./demo/demo.db"

type demoBook struct {
	Title, Author, Genre string
}

type demoUser struct {
	Name, Username string
	Role           entities.Role
}

type demoLoan struct {
	Username string
	Book     int // index into books
	DaysAgo  int // borrow date relative to today
	KeptDays int // 0 leaves the loan open
}

var books = []demoBook{
	{"Pride and Prejudice", "Jane Austen", "Romance"},
	{"Moby-Dick", "Herman Melville", "Adventure"},
	{"Frankenstein", "Mary Shelley", "Gothic"},
	{"The Adventures of Sherlock Holmes", "Arthur Conan Doyle", "Mystery"},
	{"Meditations", "Marcus Aurelius", "Philosophy"},
	{"The Time Machine", "H. G. Wells", "Science Fiction"},
	{"Dracula", "Bram Stoker", "Gothic"},
	{"A Tale of Two Cities", "Charles Dickens", "Historical"},
	{"The Odyssey", "Homer", "Epic"},
	{"Walden", "Henry David Thoreau", "Philosophy"},
}

var users = []demoUser{
	{"Ada Admin", "admin", entities.RoleAdmin},
	{"Lee Park", "librarian", entities.RoleLibrarian},
	{"Sam Reader", "sam", entities.RoleStudent},
	{"Alex Kim", "alex", entities.RoleStudent},
	{"Jo March", "jo", entities.RoleStudent},
}

var loans = []demoLoan{
	{"sam", 0, 3, 0},    // on time
	{"sam", 5, 20, 0},   // overdue
	{"alex", 2, 30, 0},  // overdue
	{"alex", 4, 40, 18}, // returned late
	{"jo", 8, 10, 5},    // returned on time
}

// Dracula is on the shelf, so sam gets a wishlist notification right away.
// jo waits for books that are on loan.
var wishlists = map[string][]int{
	"jo":  {0, 2},
	"sam": {6},
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	password := flag.String("password", "demo", "password for every demo account")
	flag.Parse()

	log.Printf("Generating demo library at %s...", *dbPath)

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	cfg := config.NewConfig()
	cfg.Database.Path = *dbPath
	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	svc := app.Circulation

	bookIDs := make([]uint, len(books))
	for i, b := range books {
		book, err := svc.AddBook(ctx, b.Title, b.Author, b.Genre)
		if err != nil {
			log.Fatalf("Failed to add book %s: %v", b.Title, err)
		}
		bookIDs[i] = book.ID
	}
	log.Printf("Added %d books", len(bookIDs))

	userIDs := make(map[string]uint, len(users))
	for _, u := range users {
		borrower, err := svc.Register(ctx, u.Name, u.Username, *password, u.Role)
		if err != nil {
			log.Fatalf("Failed to register %s: %v", u.Username, err)
		}
		userIDs[u.Username] = borrower.ID
		log.Printf("Registered %s (%s)", u.Username, u.Role)
	}

	today := svc.Today()
	desk := circulation.WithActor(ctx, userIDs["librarian"])
	for _, l := range loans {
		borrowerID, bookID := userIDs[l.Username], bookIDs[l.Book]
		borrowed := today.AddDate(0, 0, -l.DaysAgo)

		loan, err := app.Ledger.Issue(desk, borrowerID, bookID, borrowed)
		if err != nil {
			log.Printf("Failed to issue %q to %s: %v", books[l.Book].Title, l.Username, err)
			continue
		}
		if l.KeptDays == 0 {
			continue
		}

		returned := loan.BorrowDate.AddDate(0, 0, l.KeptDays)
		if _, fine, err := app.Ledger.Return(desk, borrowerID, bookID, returned); err != nil {
			log.Printf("Failed to return %q: %v", books[l.Book].Title, err)
		} else if fine > 0 {
			log.Printf("%s paid a fine of %d for %q", l.Username, fine, books[l.Book].Title)
		}
	}

	for username, picks := range wishlists {
		self := circulation.WithActor(ctx, userIDs[username])
		for _, i := range picks {
			if err := svc.WishlistAdd(self, userIDs[username], bookIDs[i]); err != nil {
				log.Printf("Failed to wishlist %q for %s: %v", books[i].Title, username, err)
			}
		}
	}

	overdue, err := svc.OverdueReport(ctx, today)
	if err != nil {
		log.Fatalf("Failed to build overdue report: %v", err)
	}
	log.Printf("Demo library generated: %d books, %d accounts, %d overdue loans (password %q)",
		len(bookIDs), len(userIDs), len(overdue), *password)
}
