// Package scoring computes SPM-2 raw scores. All functions are pure.
package scoring

import (
	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/norms"
)

// ScoreSection sums per-question contributions for one section. Unanswered questions
// and off-scale values contribute 0; the section policy decides reversal.
func ScoreSection(section catalog.Section, responses map[string]int) int {
	total := 0
	for _, q := range section.Questions {
		r, ok := responses[q.ID]
		if !ok {
			continue
		}
		total += section.Policy.Contribution(r)
	}
	return total
}

// ScoreComposite sums the sections whose policy places them in the sensory total.
func ScoreComposite(cat *catalog.Catalog, responses map[string]int) int {
	total := 0
	for _, section := range cat.Sections() {
		if section.Policy.InComposite {
			total += ScoreSection(section, responses)
		}
	}
	return total
}

// ScoreTotal sums every section in the catalog.
func ScoreTotal(cat *catalog.Catalog, responses map[string]int) int {
	total := 0
	for _, section := range cat.Sections() {
		total += ScoreSection(section, responses)
	}
	return total
}

// SectionResult is the interpreted score of one section or of the composite.
type SectionResult struct {
	SectionID  string         `json:"section_id"`
	Title      string         `json:"title"`
	ShortTitle string         `json:"short_title,omitempty"`
	Raw        int            `json:"raw_score"`
	TScore     norms.TScore   `json:"t_score"`
	Category   norms.Category `json:"category"`
	Answered   int            `json:"answered"`
	Questions  int            `json:"questions"`
}

// Report is the full score table for a response set.
type Report struct {
	Sections  []SectionResult `json:"sections"`
	Composite SectionResult   `json:"sensory_total"`
	Total     int             `json:"total"`
	Complete  bool            `json:"complete"`
}

// Build scores every section, then the composite and total, and interprets each
// against tables.
func Build(cat *catalog.Catalog, tables *norms.Tables, responses map[string]int) Report {
	report := Report{Complete: true}
	var compositeAnswered, compositeQuestions int
	for _, section := range cat.Sections() {
		raw := ScoreSection(section, responses)
		answered := countAnswered(section, responses)
		if answered < len(section.Questions) {
			report.Complete = false
		}
		if section.Policy.InComposite {
			compositeAnswered += answered
			compositeQuestions += len(section.Questions)
		}
		report.Sections = append(report.Sections, SectionResult{
			SectionID:  section.ID,
			Title:      section.Title,
			ShortTitle: section.ShortTitle,
			Raw:        raw,
			TScore:     tables.LookupTScore(section.ID, raw),
			Category:   tables.Classify(section.ID, raw),
			Answered:   answered,
			Questions:  len(section.Questions),
		})
		report.Total += raw
	}

	composite := ScoreComposite(cat, responses)
	report.Composite = SectionResult{
		SectionID:  catalog.CompositeSectionID,
		Title:      "Sensory Total",
		ShortTitle: "ST",
		Raw:        composite,
		TScore:     tables.LookupTScore(catalog.CompositeSectionID, composite),
		Category:   tables.Classify(catalog.CompositeSectionID, composite),
		Answered:   compositeAnswered,
		Questions:  compositeQuestions,
	}
	return report
}

func countAnswered(section catalog.Section, responses map[string]int) int {
	n := 0
	for _, q := range section.Questions {
		if v, ok := responses[q.ID]; ok && v >= catalog.MinValue && v <= catalog.MaxValue {
			n++
		}
	}
	return n
}
