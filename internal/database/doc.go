// Package database opens the circulation SQLite database and runs work
// against it.
//
// # Layout
//
//	database/
//	├── database.go  # Connection setup, migrations, transactions
//	└── audit/       # Audit event repository
//
// Domain services (catalog, membership, ledger) keep their queries next to
// their rules and reach the database only through Transaction and Query:
//
//	db, err := database.Open(database.Options{Path: "./circulation.db"})
//
//	err = db.Transaction(ctx, func(ctx context.Context) error {
//		// every Query made with this ctx joins the transaction
//		return books.MarkBorrowed(ctx, bookID)
//	})
//
// # Concurrency
//
// Transactions start with BEGIN IMMEDIATE, so two writers never both read
// a book as available. A partial unique index on borrowed_books(book_id)
// keeps at most one open loan per book even if a caller skips the catalog
// check.
//
// # Errors
//
// Transaction and Query return errors that carry an errs kind. Driver and
// timeout failures become errs.ErrStorage.
package database
