package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/entities"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeReporter struct {
	today  time.Time
	report []circulation.OverdueLoan
	err    error
	asOf   time.Time
	done   chan time.Time
}

func (f *fakeReporter) Today() time.Time { return f.today }

func (f *fakeReporter) OverdueReport(ctx context.Context, asOf time.Time) ([]circulation.OverdueLoan, error) {
	f.asOf = asOf
	if f.done != nil {
		select {
		case f.done <- asOf:
		default:
		}
	}
	return f.report, f.err
}

type notification struct {
	action string
	count  int
	err    error
}

type fakeNotes struct {
	logged []notification
}

func (f *fakeNotes) LogNotification(action, description string, count int, err error) {
	f.logged = append(f.logged, notification{action: action, count: count, err: err})
}

type fakeScanner struct {
	holders []entities.Borrower
	books   map[uint][]entities.Book
	failFor uint
}

func (f *fakeScanner) WishlistHolders(ctx context.Context) ([]entities.Borrower, error) {
	return f.holders, nil
}

func (f *fakeScanner) WishlistNotifications(ctx context.Context, borrowerID uint) ([]entities.Book, error) {
	if borrowerID == f.failFor {
		return nil, errors.New("boom")
	}
	return f.books[borrowerID], nil
}

type fakeCleaner struct {
	retention time.Duration
	deleted   int64
}

func (f *fakeCleaner) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return f.deleted, nil
}

func TestOverdueScanProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to today", func(t *testing.T) {
		reporter := &fakeReporter{
			today: day(2024, 3, 1),
			report: []circulation.OverdueLoan{
				{Loan: entities.Loan{BorrowerID: 1, BookID: 2, Book: &entities.Book{Title: "Dune"}}, DaysLate: 3},
				{Loan: entities.Loan{BorrowerID: 1, BookID: 3}, DaysLate: 1},
			},
		}
		notes := &fakeNotes{}

		err := OverdueScanProcessor(reporter, notes)(ctx, OverdueScanTask{})

		require.NoError(t, err)
		assert.Equal(t, day(2024, 3, 1), reporter.asOf)
		assert.Equal(t, []notification{{action: "overdue_scan", count: 2}}, notes.logged)
	})

	t.Run("explicit date", func(t *testing.T) {
		reporter := &fakeReporter{today: day(2024, 3, 1)}

		err := OverdueScanProcessor(reporter, nil)(ctx, OverdueScanTask{AsOf: "2024-04-02"})

		require.NoError(t, err)
		assert.Equal(t, day(2024, 4, 2), reporter.asOf)
	})

	t.Run("malformed date is dropped", func(t *testing.T) {
		reporter := &fakeReporter{today: day(2024, 3, 1)}

		err := OverdueScanProcessor(reporter, nil)(ctx, OverdueScanTask{AsOf: "yesterday"})

		require.NoError(t, err)
		assert.True(t, reporter.asOf.IsZero(), "report must not run")
	})

	t.Run("report failure is retried", func(t *testing.T) {
		reporter := &fakeReporter{err: errors.New("database is locked")}
		notes := &fakeNotes{}

		err := OverdueScanProcessor(reporter, notes)(ctx, OverdueScanTask{})

		require.Error(t, err)
		require.Len(t, notes.logged, 1)
		assert.Error(t, notes.logged[0].err)
	})

	t.Run("not configured", func(t *testing.T) {
		assert.Error(t, OverdueScanProcessor(nil, nil)(ctx, OverdueScanTask{}))
	})
}

func TestWishlistScanProcessor(t *testing.T) {
	scanner := &fakeScanner{
		holders: []entities.Borrower{
			{ID: 1, Username: "s1"},
			{ID: 2, Username: "s2"},
			{ID: 3, Username: "s3"},
		},
		books: map[uint][]entities.Book{
			1: {{ID: 10, Title: "Dune"}, {ID: 11, Title: "Emma"}},
		},
		failFor: 3,
	}
	notes := &fakeNotes{}

	err := WishlistScanProcessor(scanner, notes)(context.Background(), WishlistScanTask{})

	require.NoError(t, err)
	assert.Equal(t, []notification{{action: "wishlist_scan", count: 1}}, notes.logged)
	assert.Error(t, WishlistScanProcessor(nil, nil)(context.Background(), WishlistScanTask{}))
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("task retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 4}
		err := CleanupAuditEventsProcessor(cleaner, 90)(ctx, CleanupAuditEventsTask{RetentionDays: 7})
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cleaner.retention)
	})

	t.Run("configured default", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		err := CleanupAuditEventsProcessor(cleaner, 30)(ctx, CleanupAuditEventsTask{})
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("built-in default", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		err := CleanupAuditEventsProcessor(cleaner, 0)(ctx, CleanupAuditEventsTask{})
		require.NoError(t, err)
		assert.Equal(t, 90*24*time.Hour, cleaner.retention)
	})

	t.Run("not configured", func(t *testing.T) {
		assert.Error(t, CleanupAuditEventsProcessor(nil, 30)(ctx, CleanupAuditEventsTask{}))
	})
}
