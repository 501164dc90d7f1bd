package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

// UserReportCommand prints borrower counts and the librarian roster.
type UserReportCommand struct {
	DatabasePath string

	Out io.Writer
}

func NewUserReportCommand() *UserReportCommand {
	return &UserReportCommand{Out: os.Stdout}
}

func (cmd *UserReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("user-report", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the circulation database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s user-report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Summarize borrowers by role and status.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *UserReportCommand) Run() error {
	app, err := openApp(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	activity, err := app.Circulation.UserActivityReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to build user report: %w", err)
	}
	librarians, err := app.Circulation.LibrarianReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to build librarian report: %w", err)
	}

	fmt.Fprintln(cmd.Out, "User Report")
	fmt.Fprintln(cmd.Out, "===========")
	fmt.Fprintf(cmd.Out, "Total: %d (active %d, inactive %d)\n", activity.Total, activity.Active, activity.Inactive)
	for _, role := range entities.Roles {
		fmt.Fprintf(cmd.Out, "  %-10s %d\n", role, activity.ByRole[role])
	}

	fmt.Fprintf(cmd.Out, "\nLibrarians: %d (active %d, inactive %d)\n", librarians.Total, librarians.Active, librarians.Inactive)
	for _, l := range librarians.Librarians {
		status := "active"
		if !l.Active {
			status = "inactive"
		}
		fmt.Fprintf(cmd.Out, "  %s (%s) %s\n", l.Name, l.Username, status)
	}
	return nil
}
