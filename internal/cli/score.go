package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/norms"
	"github.com/noah-isme/ot-practice-api/internal/scoring"
)

// responsePaths are tried in order so that raw maps, assessment records and API
// envelopes can all be scored.
var responsePaths = []string{"data.responses", "responses", "@this"}

// NewScoreCommand creates the 'spm2ctl score' command.
func NewScoreCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <responses.json>",
		Short: "Score an SPM-2 Home Form response file",
		Long: `Score reads a JSON object mapping question ids to answers (1-4) and prints
the raw score, T-score and category for every section, then the sensory total
and the overall total. The object may also be nested under "responses" or
"data.responses", as returned by the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read responses: %w", err)
			}
			responses, err := parseResponses(raw)
			if err != nil {
				return err
			}
			if unknown := unknownQuestions(catalog.SPM2Home(), responses); len(unknown) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "ignoring unknown question ids: %v\n", unknown)
			}
			report := scoring.Build(catalog.SPM2Home(), norms.SPM2Home(), responses)
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the score table as JSON")
	return cmd
}

func parseResponses(raw []byte) (map[string]int, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("responses file is not valid JSON")
	}
	for _, path := range responsePaths {
		result := gjson.GetBytes(raw, path)
		if !result.IsObject() {
			continue
		}
		responses := make(map[string]int)
		var bad []string
		result.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.Number {
				bad = append(bad, key.String())
				return true
			}
			responses[key.String()] = int(value.Int())
			return true
		})
		if len(bad) > 0 {
			slices.Sort(bad)
			return nil, fmt.Errorf("non-numeric answers for %v", bad)
		}
		return responses, nil
	}
	return nil, fmt.Errorf("no response map found")
}

func unknownQuestions(cat *catalog.Catalog, responses map[string]int) []string {
	var unknown []string
	for id := range responses {
		if _, _, ok := cat.Question(id); !ok {
			unknown = append(unknown, id)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func printReport(w io.Writer, report scoring.Report) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%-34s %5s %7s  %s\n", "Section", "Raw", "T", "Category")
	for _, section := range report.Sections {
		printRow(w, section)
	}
	fmt.Fprintln(w)
	printRow(w, report.Composite)
	fmt.Fprintf(w, "%-34s %5d\n", "Total", report.Total)
	if !report.Complete {
		color.New(color.FgYellow).Fprintln(w, "Some questions are unanswered; scores are provisional.")
	}
}

func printRow(w io.Writer, section scoring.SectionResult) {
	fmt.Fprintf(w, "%-34s %5d %7s  ", section.Title, section.Raw, section.TScore)
	categoryColor(section.Category).Fprintln(w, section.Category)
}

func categoryColor(category norms.Category) *color.Color {
	switch category {
	case norms.Severe:
		return color.New(color.FgRed, color.Bold)
	case norms.Moderate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
