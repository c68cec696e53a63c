package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/sfn101/book-manager/internal/config"
	"github.com/sfn101/book-manager/internal/database"
	"github.com/sfn101/book-manager/internal/database/users"
	"github.com/sfn101/book-manager/internal/entities"
)

// PromoteCommand grants a user the admin role from the command line,
// for recovering an instance that has lost its last administrator.
type PromoteCommand struct {
	DatabasePath string
	Username     string
}

func NewPromoteCommand() *PromoteCommand {
	return &PromoteCommand{}
}

func (cmd *PromoteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "user", "", "Username or email to promote (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s promote -user <username>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Grant the admin role to an existing user.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("user is required")
	}

	return nil
}

func (cmd *PromoteCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)

	user, err := repo.GetByUsernameOrEmail(cmd.Username)
	if err != nil {
		return fmt.Errorf("user %q not found", cmd.Username)
	}
	if user.Role == entities.UserRoleAdmin {
		fmt.Printf("%s is already an admin\n", user.Username)
		return nil
	}

	role := entities.UserRoleAdmin
	if _, err := repo.Update(user.ID, users.UpdateFields{Role: &role}); err != nil {
		return fmt.Errorf("failed to promote %q: %w", user.Username, err)
	}

	fmt.Printf("%s is now an admin\n", user.Username)
	return nil
}
