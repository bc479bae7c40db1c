// Package takeaway turns a section's responses into a short summary, either composed
// from a fixed template or generated by an external narrative service.
package takeaway

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

// Lower-case bucket labels as they appear in composed lines.
const (
	LabelNever        = "never"
	LabelOccasionally = "occasionally"
	LabelFrequently   = "frequently"
	LabelAlways       = "always"
)

// NoSignificantResponses is returned when no bucket holds an item.
const NoSignificantResponses = "No significant responses in this section."

// EmissionOrder is the line order of a composed takeaway. Always precedes frequently.
var EmissionOrder = [...]string{LabelNever, LabelOccasionally, LabelAlways, LabelFrequently}

var scaleLabels = [...]string{"", "Never", "Occasionally", "Frequently", "Always"}

// ResponseLabel maps a scale value to its display label, or "N/A" when off the scale.
func ResponseLabel(value int) string {
	if value < catalog.MinValue || value > catalog.MaxValue {
		return catalog.LabelNotApplicable
	}
	return scaleLabels[value]
}

// Buckets groups notable question texts by response label, each in catalog order.
type Buckets struct {
	Never        []string `json:"never,omitempty"`
	Occasionally []string `json:"occasionally,omitempty"`
	Frequently   []string `json:"frequently,omitempty"`
	Always       []string `json:"always,omitempty"`
}

// Items returns the bucket for a lower-case label.
func (b Buckets) Items(label string) []string {
	switch label {
	case LabelNever:
		return b.Never
	case LabelOccasionally:
		return b.Occasionally
	case LabelFrequently:
		return b.Frequently
	case LabelAlways:
		return b.Always
	}
	return nil
}

// Empty reports whether no bucket holds an item.
func (b Buckets) Empty() bool {
	return len(b.Never)+len(b.Occasionally)+len(b.Frequently)+len(b.Always) == 0
}

func (b *Buckets) add(value int, text string) {
	switch value {
	case 1:
		b.Never = append(b.Never, text)
	case 2:
		b.Occasionally = append(b.Occasionally, text)
	case 3:
		b.Frequently = append(b.Frequently, text)
	case 4:
		b.Always = append(b.Always, text)
	}
}

// SelectHighlights buckets the section's notable answers. Notability comes from the
// section policy; absent and off-scale answers are never bucketed.
func SelectHighlights(section catalog.Section, responses map[string]int) Buckets {
	var b Buckets
	for _, q := range section.Questions {
		v, ok := responses[q.ID]
		if !ok || ResponseLabel(v) == catalog.LabelNotApplicable {
			continue
		}
		if !section.Policy.Highlights(v) {
			continue
		}
		b.add(v, NormaliseCase(q.Text))
	}
	return b
}

// ComposeTakeaway renders one "<subject> <label>: a | b" line per non-empty bucket in
// EmissionOrder, or NoSignificantResponses.
func ComposeTakeaway(b Buckets, subjectName string) string {
	lines := make([]string, 0, len(EmissionOrder))
	for _, label := range EmissionOrder {
		items := b.Items(label)
		if len(items) == 0 {
			continue
		}
		lines = append(lines, subjectName+" "+label+": "+strings.Join(items, " | "))
	}
	if len(lines) == 0 {
		return NoSignificantResponses
	}
	return strings.Join(lines, "\n")
}

// NormaliseCase upper-cases the first rune and lower-cases the rest.
func NormaliseCase(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
