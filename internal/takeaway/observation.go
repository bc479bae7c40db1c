package takeaway

import (
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

// ObservationSummary renders a plain-text summary of an observation: a header, each
// template section underlined with "=", a bullet per answered question, then notes.
func ObservationSummary(template *catalog.Catalog, responses map[string]string, notes, clientName string) string {
	var sb strings.Builder
	sb.WriteString(template.Name() + " - " + clientName + "\n\n")

	for _, section := range template.Sections() {
		sb.WriteString(section.Title + "\n")
		sb.WriteString(strings.Repeat("=", utf8.RuneCountInString(section.Title)) + "\n\n")
		for _, q := range section.Questions {
			if answer := responses[q.ID]; answer != "" {
				sb.WriteString("• " + q.Text + ": " + answer + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if notes != "" {
		sb.WriteString("Notes\n=====\n\n")
		sb.WriteString(notes + "\n")
	}
	return sb.String()
}
