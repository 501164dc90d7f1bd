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

// CreateUserCommand registers a borrower directly in the database. It is the
// only way to create the first Admin.
type CreateUserCommand struct {
	DatabasePath string
	Name         string
	Username     string
	Password     string
	Role         entities.Role

	Out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{Out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	var role string
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the circulation database")
	fs.StringVar(&cmd.Name, "name", "", "Full name (defaults to the username)")
	fs.StringVar(&cmd.Username, "username", "", "Login name (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("CIRCULATION_PASSWORD"), "Password (or set CIRCULATION_PASSWORD)")
	fs.StringVar(&role, "role", string(entities.RoleAdmin), "Role: Student, Librarian or Admin")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a borrower account without going through the API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username admin -password s3cret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username lee -name \"Lee Park\" -role Librarian\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password is required: pass -password or set CIRCULATION_PASSWORD")
	}
	r, ok := entities.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role: %s", role)
	}
	cmd.Role = r
	if cmd.Name == "" {
		cmd.Name = cmd.Username
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	app, err := openApp(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer app.Close()

	borrower, err := app.Circulation.Register(context.Background(), cmd.Name, cmd.Username, cmd.Password, cmd.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Created %s %q (id %d)\n", borrower.Role, borrower.Username, borrower.ID)
	return nil
}
