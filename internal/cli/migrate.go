package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/ot-practice-api/migrations"
	"github.com/noah-isme/ot-practice-api/pkg/config"
	"github.com/noah-isme/ot-practice-api/pkg/database"
)

// NewMigrateCommand creates the 'spm2ctl migrate' command group.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long:  "Migrate connects using the same DB_* settings as the API server.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(run migrationRunner) error {
				n, err := run.up()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDatabase(func(run migrationRunner) error {
				n, err := run.down(steps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", n)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

type migrationRunner struct {
	up   func() (int, error)
	down func(steps int) (int, error)
}

func withDatabase(fn func(migrationRunner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(migrationRunner{
		up:   func() (int, error) { return migrations.Up(db.DB) },
		down: func(steps int) (int, error) { return migrations.Down(db.DB, steps) },
	})
}
