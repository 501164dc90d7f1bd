package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
	"github.com/mrlokans/circulation/internal/membership"
	"github.com/mrlokans/circulation/internal/testutil"
)

type fixture struct {
	ctx     context.Context
	books   *catalog.Service
	members *membership.Service
	ledger  *Service
}

func setupLedger(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDatabase(t)
	books := catalog.NewService(db)
	members := membership.NewService(db, bcrypt.MinCost)
	return &fixture{
		ctx:     context.Background(),
		books:   books,
		members: members,
		ledger:  NewService(db, books, members, Options{}),
	}
}

func (f *fixture) student(t *testing.T, username string) *entities.Borrower {
	t.Helper()
	b, err := f.members.Register(f.ctx, "Student "+username, username, "pw", entities.RoleStudent)
	require.NoError(t, err)
	return b
}

func (f *fixture) book(t *testing.T, title string) *entities.Book {
	t.Helper()
	b, err := f.books.AddBook(f.ctx, title, "Author of "+title, "Fiction")
	require.NoError(t, err)
	return b
}

// assertAvailability checks that the flag agrees with the open loans.
func (f *fixture) assertAvailability(t *testing.T, bookID uint) {
	t.Helper()
	book, err := f.books.Get(f.ctx, bookID)
	require.NoError(t, err)
	open, err := f.ledger.HasOpenLoan(f.ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, !open, book.Available, "availability must mirror open loans")
}

func TestService_Issue(t *testing.T) {
	today := testutil.Day(2024, time.March, 1)

	t.Run("creates an open loan due after the loan period", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")

		loan, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today.Add(15*time.Hour))

		require.NoError(t, err)
		assert.True(t, loan.IsOpen())
		assert.Equal(t, today, loan.BorrowDate)
		assert.Equal(t, testutil.Day(2024, time.March, 15), loan.DueDate)
		assert.Zero(t, loan.Fine)
		f.assertAvailability(t, b1.ID)

		book, err := f.books.Get(f.ctx, b1.ID)
		require.NoError(t, err)
		assert.False(t, book.Available)
	})

	t.Run("book already on loan", func(t *testing.T) {
		f := setupLedger(t)
		s1, s2, b1 := f.student(t, "s1"), f.student(t, "s2"), f.book(t, "B1")

		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, err = f.ledger.Issue(f.ctx, s2.ID, b1.ID, today)
		assert.ErrorIs(t, err, errs.ErrUnavailable)
		f.assertAvailability(t, b1.ID)
	})

	t.Run("unknown borrower or book", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")

		_, err := f.ledger.Issue(f.ctx, 999, b1.ID, today)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		_, err = f.ledger.Issue(f.ctx, s1.ID, 999, today)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		f.assertAvailability(t, b1.ID)
	})

	t.Run("inactive borrower", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")
		require.NoError(t, f.members.SetActive(f.ctx, s1.ID, false))

		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.assertAvailability(t, b1.ID)
	})

	t.Run("loan period defaults to two weeks", func(t *testing.T) {
		assert.Equal(t, DefaultLoanPeriod, NewService(nil, nil, nil, Options{}).LoanPeriod())
		assert.Equal(t, 7, NewService(nil, nil, nil, Options{LoanPeriodDays: 7}).LoanPeriod())
	})
}

func TestService_Issue_Concurrent(t *testing.T) {
	f := setupLedger(t)
	b1 := f.book(t, "Contested")
	today := testutil.Day(2024, time.March, 1)

	const callers = 8
	students := make([]*entities.Borrower, callers)
	for i := range students {
		students[i] = f.student(t, fmt.Sprintf("s%d", i))
	}

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.ledger.Issue(f.ctx, students[i].ID, b1.ID, today)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, errs.ErrUnavailable)
	}
	assert.Equal(t, 1, successes)

	loans, err := f.ledger.OpenLoans(f.ctx)
	require.NoError(t, err)
	assert.Len(t, loans, 1)
	f.assertAvailability(t, b1.ID)
}

func TestService_Return(t *testing.T) {
	today := testutil.Day(2024, time.March, 1)

	t.Run("scenario: returned six days late", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")

		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		loan, fine, err := f.ledger.Return(f.ctx, s1.ID, b1.ID, today.AddDate(0, 0, 20))

		require.NoError(t, err)
		assert.Equal(t, fines.Amount(30), fine)
		assert.Equal(t, int64(30), loan.Fine)
		require.NotNil(t, loan.ReturnDate)
		assert.Equal(t, today.AddDate(0, 0, 20), *loan.ReturnDate)
		f.assertAvailability(t, b1.ID)

		history, err := f.ledger.History(f.ctx, s1.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.False(t, history[0].IsOpen())
		assert.Equal(t, int64(30), history[0].Fine)
	})

	t.Run("on time return has no fine", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")
		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, fine, err := f.ledger.Return(f.ctx, s1.ID, b1.ID, today.AddDate(0, 0, 14))

		require.NoError(t, err)
		assert.Zero(t, fine)
	})

	t.Run("no open loan", func(t *testing.T) {
		f := setupLedger(t)
		s1, s2, b1 := f.student(t, "s1"), f.student(t, "s2"), f.book(t, "B1")
		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, _, err = f.ledger.Return(f.ctx, s2.ID, b1.ID, today)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		_, _, err = f.ledger.Return(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, _, err = f.ledger.Return(f.ctx, s1.ID, b1.ID, today)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		f.assertAvailability(t, b1.ID)
	})

	t.Run("custom fine rate", func(t *testing.T) {
		f := setupLedger(t)
		db := testutil.NewDatabase(t)
		f.books = catalog.NewService(db)
		f.members = membership.NewService(db, bcrypt.MinCost)
		f.ledger = NewService(db, f.books, f.members, Options{FineRate: 10})
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")
		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, fine, err := f.ledger.Return(f.ctx, s1.ID, b1.ID, today.AddDate(0, 0, 16))

		require.NoError(t, err)
		assert.Equal(t, fines.Amount(20), fine)
	})
}

func TestService_IssueReturnIssue(t *testing.T) {
	f := setupLedger(t)
	s1, s2, b1 := f.student(t, "s1"), f.student(t, "s2"), f.book(t, "B1")
	today := testutil.Day(2024, time.March, 1)

	_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
	require.NoError(t, err)
	_, _, err = f.ledger.Return(f.ctx, s1.ID, b1.ID, today)
	require.NoError(t, err)
	f.assertAvailability(t, b1.ID)

	loan, err := f.ledger.Issue(f.ctx, s2.ID, b1.ID, today)
	require.NoError(t, err)
	assert.Equal(t, s2.ID, loan.BorrowerID)
	f.assertAvailability(t, b1.ID)

	_, _, err = f.ledger.Return(f.ctx, s2.ID, b1.ID, today)
	require.NoError(t, err)
	_, err = f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
	require.NoError(t, err)

	history, err := f.ledger.History(f.ctx, s1.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsOpen(), "newest loan first")
	assert.False(t, history[1].IsOpen())
}

func TestService_Renew(t *testing.T) {
	today := testutil.Day(2024, time.March, 1)

	t.Run("changes only the due date", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")
		issued, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		renewed, err := f.ledger.Renew(f.ctx, s1.ID, b1.ID, today.AddDate(0, 0, 10))

		require.NoError(t, err)
		assert.Equal(t, today.AddDate(0, 0, 24), renewed.DueDate)

		open, err := f.ledger.OpenLoansFor(f.ctx, s1.ID)
		require.NoError(t, err)
		require.Len(t, open, 1)
		stored := open[0]
		assert.Equal(t, issued.ID, stored.ID)
		assert.True(t, issued.BorrowDate.Equal(stored.BorrowDate))
		assert.True(t, today.AddDate(0, 0, 24).Equal(stored.DueDate))
		assert.Nil(t, stored.ReturnDate)
		assert.Zero(t, stored.Fine)
		f.assertAvailability(t, b1.ID)
	})

	t.Run("closed loan cannot be renewed", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")
		_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)
		_, _, err = f.ledger.Return(f.ctx, s1.ID, b1.ID, today)
		require.NoError(t, err)

		_, err = f.ledger.Renew(f.ctx, s1.ID, b1.ID, today)

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("never borrowed", func(t *testing.T) {
		f := setupLedger(t)
		s1, b1 := f.student(t, "s1"), f.book(t, "B1")

		_, err := f.ledger.Renew(f.ctx, s1.ID, b1.ID, today)

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_Queries(t *testing.T) {
	f := setupLedger(t)
	s1, s2 := f.student(t, "s1"), f.student(t, "s2")
	b1, b2, b3 := f.book(t, "B1"), f.book(t, "B2"), f.book(t, "B3")
	day1 := testutil.Day(2024, time.March, 1)
	day2 := testutil.Day(2024, time.March, 5)

	_, err := f.ledger.Issue(f.ctx, s1.ID, b1.ID, day1)
	require.NoError(t, err)
	_, err = f.ledger.Issue(f.ctx, s1.ID, b2.ID, day2)
	require.NoError(t, err)
	_, err = f.ledger.Issue(f.ctx, s2.ID, b3.ID, day2)
	require.NoError(t, err)
	_, _, err = f.ledger.Return(f.ctx, s1.ID, b1.ID, day2)
	require.NoError(t, err)

	open, err := f.ledger.OpenLoansFor(f.ctx, s1.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b2.ID, open[0].BookID)
	require.NotNil(t, open[0].Book)
	assert.Equal(t, "B2", open[0].Book.Title)

	all, err := f.ledger.OpenLoans(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Borrower)

	has, err := f.ledger.HasOpenLoan(f.ctx, b1.ID)
	require.NoError(t, err)
	assert.False(t, has)

	totals, err := f.ledger.Totals(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{OpenLoans: 2, ClosedLoans: 1, FinesCollected: 0}, totals)
}
