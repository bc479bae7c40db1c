package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

// NewCatalogCommand creates the 'spm2ctl catalog' command.
func NewCatalogCommand() *cobra.Command {
	var templateID string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List sections and question ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, ok := catalog.ByID(templateID)
			if !ok {
				return fmt.Errorf("unknown catalog %q", templateID)
			}
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			bold.Fprintf(out, "%s (%s)\n", cat.Name(), cat.ID())
			if scale := cat.Scale(); len(scale) > 0 {
				labels := make([]string, 0, len(scale))
				for _, option := range scale {
					labels = append(labels, fmt.Sprintf("%d=%s", option.Value, option.Label))
				}
				fmt.Fprintf(out, "Scale: %s\n", strings.Join(labels, ", "))
			}
			for _, section := range cat.Sections() {
				fmt.Fprintln(out)
				color.New(color.FgCyan).Fprintf(out, "%s [%s]\n", section.Title, section.ID)
				for _, q := range section.Questions {
					if verbose {
						fmt.Fprintf(out, "  %-14s %s\n", q.ID, q.Text)
						continue
					}
					fmt.Fprintf(out, "  %s\n", q.ID)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&templateID, "id", catalog.SPM2Home().ID(), "catalog id")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include question text")
	return cmd
}
