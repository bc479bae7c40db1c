package catalog

// ReversedSectionID identifies the section whose answers are scored as 5-r.
const ReversedSectionID = "social-participation"

// CompositeSectionID names the synthetic sensory total in the norm tables.
const CompositeSectionID = "sensory-total"

// CompositeSectionIDs is the fixed membership of the sensory total. It is a clinical
// convention and is not derived from catalog structure.
var CompositeSectionIDs = [...]string{
	"vision",
	"hearing",
	"touch",
	"taste-smell",
	"body-awareness",
	"balance-motion",
}

// Policy holds every per-section exception consulted by scoring and highlighting.
type Policy struct {
	Reversed        bool  `json:"reversed"`
	InComposite     bool  `json:"in_composite"`
	HighlightValues []int `json:"highlight_values"`
}

// Highlights reports whether a response value is clinically notable for the section.
func (p Policy) Highlights(value int) bool {
	for _, v := range p.HighlightValues {
		if v == value {
			return true
		}
	}
	return false
}

// Contribution returns the score contributed by one answer. Values outside the
// 1..4 scale contribute nothing.
func (p Policy) Contribution(value int) int {
	if value < MinValue || value > MaxValue {
		return 0
	}
	if p.Reversed {
		return MinValue + MaxValue - value
	}
	return value
}

func policyFor(sectionID string) Policy {
	p := Policy{HighlightValues: []int{3, 4}}
	if sectionID == ReversedSectionID {
		p.Reversed = true
		p.HighlightValues = []int{1, 2}
	}
	for _, id := range CompositeSectionIDs {
		if id == sectionID {
			p.InComposite = true
		}
	}
	return p
}

func (p Policy) clone() Policy {
	p.HighlightValues = append([]int(nil), p.HighlightValues...)
	return p
}
