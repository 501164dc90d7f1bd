package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/circulation/internal/config"
)

// OverdueReportCommand prints every open loan past its due date.
type OverdueReportCommand struct {
	DatabasePath string
	AsOf         time.Time

	Out io.Writer
}

func NewOverdueReportCommand() *OverdueReportCommand {
	return &OverdueReportCommand{Out: os.Stdout}
}

func (cmd *OverdueReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("overdue-report", flag.ContinueOnError)

	var asOf string
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the circulation database")
	fs.StringVar(&asOf, "as-of", "", "Report date as YYYY-MM-DD (default: today)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue-report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List open loans past their due date, most days late first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if asOf != "" {
		d, err := time.Parse(time.DateOnly, asOf)
		if err != nil {
			return fmt.Errorf("invalid -as-of %q: expected YYYY-MM-DD", asOf)
		}
		cmd.AsOf = d
	}
	return nil
}

func (cmd *OverdueReportCommand) Run() error {
	app, err := openApp(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer app.Close()

	asOf := cmd.AsOf
	if asOf.IsZero() {
		asOf = app.Circulation.Today()
	}

	report, err := app.Circulation.OverdueReport(context.Background(), asOf)
	if err != nil {
		return fmt.Errorf("failed to build overdue report: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Overdue loans as of %s: %d\n", asOf.Format(time.DateOnly), len(report))
	if len(report) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nBORROWER\tBOOK\tDUE\tDAYS LATE")
	for _, o := range report {
		borrower, book := fmt.Sprintf("#%d", o.Loan.BorrowerID), fmt.Sprintf("#%d", o.Loan.BookID)
		if o.Loan.Borrower != nil {
			borrower = o.Loan.Borrower.Username
		}
		if o.Loan.Book != nil {
			book = o.Loan.Book.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", borrower, book, o.Loan.DueDate.Format(time.DateOnly), o.DaysLate)
	}
	return w.Flush()
}
