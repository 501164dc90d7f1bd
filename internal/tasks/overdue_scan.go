package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulation/internal/circulation"
)

// OverdueReporter derives the overdue report.
type OverdueReporter interface {
	Today() time.Time
	OverdueReport(ctx context.Context, asOf time.Time) ([]circulation.OverdueLoan, error)
}

// NotificationLogger records one derived notification batch.
type NotificationLogger interface {
	LogNotification(action, description string, count int, err error)
}

// OverdueScanTask derives the overdue report and logs one line per loan.
// Notifications are not delivered anywhere.
type OverdueScanTask struct {
	// AsOf is a YYYY-MM-DD date; empty means the day the task runs.
	AsOf string `json:"as_of,omitempty"`
}

func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_scan",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(reporter OverdueReporter, notes NotificationLogger) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		if reporter == nil {
			return fmt.Errorf("overdue reporter not configured")
		}

		asOf := reporter.Today()
		if task.AsOf != "" {
			d, err := time.Parse(time.DateOnly, task.AsOf)
			if err != nil {
				// A malformed date never succeeds on retry.
				log.Printf("[TASK] overdue_scan: ignoring bad as_of %q: %v", task.AsOf, err)
				return nil
			}
			asOf = d
		}

		report, err := reporter.OverdueReport(ctx, asOf)
		if err != nil {
			if notes != nil {
				notes.LogNotification("overdue_scan", "Overdue scan failed", 0, err)
			}
			return fmt.Errorf("overdue scan: %w", err)
		}

		for _, o := range report {
			title := ""
			if o.Loan.Book != nil {
				title = o.Loan.Book.Title
			}
			log.Printf("[TASK] Overdue: borrower %d has book %d (%s) due %s, %d days late",
				o.Loan.BorrowerID, o.Loan.BookID, title, o.Loan.DueDate.Format(time.DateOnly), o.DaysLate)
		}
		log.Printf("[TASK] Overdue scan as of %s: %d loans", asOf.Format(time.DateOnly), len(report))

		if notes != nil {
			notes.LogNotification("overdue_scan",
				fmt.Sprintf("Overdue scan as of %s", asOf.Format(time.DateOnly)), len(report), nil)
		}
		return nil
	}
}

func NewOverdueScanQueue(reporter OverdueReporter, notes NotificationLogger) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(reporter, notes))
}
