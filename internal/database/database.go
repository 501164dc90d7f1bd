package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
)

const (
	DefaultOperationTimeout = 5 * time.Second
	DefaultBusyTimeout      = 5 * time.Second
)

// openLoanIndex backs the catalog availability flag: a book can have at most
// one loan without a return date.
const openLoanIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_borrowed_books_open_book
	ON borrowed_books(book_id) WHERE return_date IS NULL`

type Options struct {
	Path string

	// OperationTimeout bounds every read and every transaction.
	OperationTimeout time.Duration

	// BusyTimeout is how long SQLite waits for the write lock. The wait
	// does not observe context cancellation, so it is capped at
	// OperationTimeout.
	BusyTimeout time.Duration

	LogLevel logger.LogLevel
}

type Database struct {
	DB      *gorm.DB
	timeout time.Duration
	busy    time.Duration
}

type txKey struct{}

func NewDatabase(dbPath string) (*Database, error) {
	return Open(Options{Path: dbPath, LogLevel: logger.Warn})
}

func Open(opts Options) (*Database, error) {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = DefaultOperationTimeout
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}
	if opts.BusyTimeout > opts.OperationTimeout {
		opts.BusyTimeout = opts.OperationTimeout
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(sqlite.Open(dsn(opts)), &gorm.Config{
		Logger:         logger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
		// Closed loans keep pointing at books that may later be removed.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Borrower{},
		&entities.Loan{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := db.Exec(openLoanIndex).Error; err != nil {
		return nil, fmt.Errorf("failed to create open loan index: %w", err)
	}

	log.Printf("Database initialized successfully at %s", opts.Path)

	return &Database{DB: db, timeout: opts.OperationTimeout, busy: opts.BusyTimeout}, nil
}

// dsn opens every transaction with BEGIN IMMEDIATE so that writers are
// serialized from their first statement.
func dsn(opts Options) string {
	sep := "?"
	if strings.Contains(opts.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_txlock=immediate&_busy_timeout=%d&_journal_mode=WAL",
		opts.Path, sep, opts.BusyTimeout.Milliseconds())
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity within the operation timeout.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a single database transaction. The transaction
// travels in the context handed to fn, so services reached from fn through
// Query join it. A nested call reuses the outer transaction.
//
// Errors carrying an errs kind come back unchanged; anything else is wrapped
// as errs.ErrStorage.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return errs.Normalize(err)
}

// Query runs a read with the operation timeout, joining the transaction in
// ctx if there is one.
func (d *Database) Query(ctx context.Context, fn func(db *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return errs.Normalize(fn(tx))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return errs.Normalize(fn(d.DB.WithContext(ctx)))
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
