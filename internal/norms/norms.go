// Package norms holds the raw score interpretation tables: severity thresholds and
// raw-to-T-score lookups per section.
package norms

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Range is an inclusive raw score interval.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether raw falls within the range, edges included.
func (r Range) Contains(raw int) bool {
	return raw >= r.Min && raw <= r.Max
}

// Thresholds partitions a section's raw score domain into severity tiers.
type Thresholds struct {
	Typical  Range `yaml:"typical" json:"typical"`
	Moderate Range `yaml:"moderate" json:"moderate"`
	Severe   Range `yaml:"severe" json:"severe"`
}

func (t Thresholds) validate() error {
	for _, r := range []Range{t.Typical, t.Moderate, t.Severe} {
		if r.Min > r.Max {
			return fmt.Errorf("range %d-%d is inverted", r.Min, r.Max)
		}
	}
	if t.Typical.Max+1 != t.Moderate.Min || t.Moderate.Max+1 != t.Severe.Min {
		return fmt.Errorf("ranges are not contiguous")
	}
	return nil
}

// Tables is an immutable set of thresholds and T-score lookups for one form.
type Tables struct {
	form       string
	thresholds map[string]Thresholds
	tScores    map[string]map[int]int
}

type document struct {
	Form     string `yaml:"form"`
	Sections []struct {
		ID         string      `yaml:"id"`
		Thresholds Thresholds  `yaml:"thresholds"`
		TScores    map[int]int `yaml:"t_scores"`
	} `yaml:"sections"`
}

// Parse decodes a norms document.
func Parse(raw []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode norms: %w", err)
	}
	t := &Tables{
		form:       doc.Form,
		thresholds: make(map[string]Thresholds, len(doc.Sections)),
		tScores:    make(map[string]map[int]int, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("norms %s: section without id", doc.Form)
		}
		if _, dup := t.thresholds[s.ID]; dup {
			return nil, fmt.Errorf("norms %s: duplicate section %s", doc.Form, s.ID)
		}
		if err := s.Thresholds.validate(); err != nil {
			return nil, fmt.Errorf("norms %s: section %s: %w", doc.Form, s.ID, err)
		}
		t.thresholds[s.ID] = s.Thresholds
		scores := make(map[int]int, len(s.TScores))
		for raw, value := range s.TScores {
			scores[raw] = value
		}
		t.tScores[s.ID] = scores
	}
	return t, nil
}

var spm2Home = sync.OnceValue(func() *Tables {
	raw, err := dataFS.ReadFile("data/spm2_home.yaml")
	if err != nil {
		panic(fmt.Sprintf("norms: %v", err))
	}
	t, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("norms: %v", err))
	}
	return t
})

// SPM2Home returns the SPM-2 home form tables.
func SPM2Home() *Tables { return spm2Home() }

// Form identifies the instrument the tables belong to.
func (t *Tables) Form() string { return t.form }

// Thresholds returns the tier ranges for a section.
func (t *Tables) Thresholds(sectionID string) (Thresholds, bool) {
	th, ok := t.thresholds[sectionID]
	return th, ok
}

// Classify maps a raw score to a category. Severe is checked before moderate; unknown
// sections and scores outside both ranges resolve to Typical.
func (t *Tables) Classify(sectionID string, raw int) Category {
	th, ok := t.thresholds[sectionID]
	if !ok {
		return Typical
	}
	if th.Severe.Contains(raw) {
		return Severe
	}
	if th.Moderate.Contains(raw) {
		return Moderate
	}
	return Typical
}

// LookupTScore returns the tabled T-score or Unavailable. There is no interpolation.
func (t *Tables) LookupTScore(sectionID string, raw int) TScore {
	scores, ok := t.tScores[sectionID]
	if !ok {
		return Unavailable
	}
	value, ok := scores[raw]
	if !ok {
		return Unavailable
	}
	return TScore{Value: value, Available: true}
}
