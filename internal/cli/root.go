// Package cli implements the spm2ctl command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is reported by spm2ctl --version.
const Version = "1.0.0"

// NewRootCommand creates the spm2ctl root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spm2ctl",
		Short: "Offline SPM-2 scoring and maintenance tools",
		Long: `spm2ctl scores SPM-2 Home Form response files without the API,
lists the questionnaire catalog and applies database migrations.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewScoreCommand())
	cmd.AddCommand(NewCatalogCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}
