// Package catalog exposes the embedded questionnaire definitions. Loaded catalogs are
// immutable; accessors hand out copies.
package catalog

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

const (
	SPM2HomeID       = "spm2-home-2-5"
	ELCObservationID = "elc-observation-of-skills"

	MinValue = 1
	MaxValue = 4
)

// Question types.
const (
	TypeScale                = "scale"
	TypeYesNoNotEstablished  = "yes-no-not-established"
	TypeMultipleChoice       = "multiple-choice"
	LabelNotApplicable       = "N/A"
	yesNoNotEstablishedLabel = "Not established"
)

// Option is one point of the SPM-2 response scale.
type Option struct {
	Value int    `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Question is a single catalog item.
type Question struct {
	ID      string   `yaml:"id" json:"id"`
	Text    string   `yaml:"text" json:"text"`
	Type    string   `yaml:"type" json:"type"`
	Options []string `yaml:"options" json:"options,omitempty"`
}

// Section is an ordered group of questions with its scoring policy.
type Section struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	ShortTitle  string     `yaml:"short_title" json:"short_title,omitempty"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Questions   []Question `yaml:"questions" json:"questions"`
	Policy      Policy     `yaml:"-" json:"policy"`
}

// DomainName returns the title without its parenthesised short code, e.g. "Vision".
func (s Section) DomainName() string {
	if i := strings.Index(s.Title, "("); i >= 0 {
		return strings.TrimSpace(s.Title[:i])
	}
	return strings.TrimSpace(s.Title)
}

// Catalog is a loaded questionnaire.
type Catalog struct {
	id          string
	name        string
	description string
	scale       []Option
	sections    []Section
	sectionIdx  map[string]int
	questionIdx map[string]string
}

type document struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Scale       []Option  `yaml:"scale"`
	Sections    []Section `yaml:"sections"`
}

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("catalog id is required")
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("catalog %s has no sections", doc.ID)
	}

	c := &Catalog{
		id:          doc.ID,
		name:        doc.Name,
		description: doc.Description,
		scale:       doc.Scale,
		sections:    doc.Sections,
		sectionIdx:  make(map[string]int, len(doc.Sections)),
		questionIdx: make(map[string]string),
	}
	for i := range c.sections {
		section := &c.sections[i]
		if section.ID == "" {
			return nil, fmt.Errorf("catalog %s: section %d has no id", c.id, i)
		}
		if _, dup := c.sectionIdx[section.ID]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate section %s", c.id, section.ID)
		}
		if len(section.Questions) == 0 {
			return nil, fmt.Errorf("catalog %s: section %s has no questions", c.id, section.ID)
		}
		c.sectionIdx[section.ID] = i
		section.Policy = policyFor(section.ID)

		for j := range section.Questions {
			q := &section.Questions[j]
			if q.ID == "" {
				return nil, fmt.Errorf("catalog %s: question %d in %s has no id", c.id, j, section.ID)
			}
			if _, dup := c.questionIdx[q.ID]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate question %s", c.id, q.ID)
			}
			c.questionIdx[q.ID] = section.ID
			if err := normaliseQuestion(q, len(c.scale) > 0); err != nil {
				return nil, fmt.Errorf("catalog %s: %w", c.id, err)
			}
		}
	}
	return c, nil
}

func normaliseQuestion(q *Question, scored bool) error {
	if q.Type == "" && scored {
		q.Type = TypeScale
	}
	switch q.Type {
	case TypeScale:
	case TypeYesNoNotEstablished:
		q.Options = []string{"Yes", "No", yesNoNotEstablishedLabel}
	case TypeMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s has no options", q.ID)
		}
	default:
		return fmt.Errorf("question %s has unknown type %q", q.ID, q.Type)
	}
	return nil
}

func mustLoad(name string) *Catalog {
	raw, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		panic(fmt.Sprintf("catalog: read %s: %v", name, err))
	}
	c, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

var (
	spm2Home       = sync.OnceValue(func() *Catalog { return mustLoad("spm2_home.yaml") })
	elcObservation = sync.OnceValue(func() *Catalog { return mustLoad("elc_observation.yaml") })
)

// SPM2Home returns the SPM-2 home form catalog.
func SPM2Home() *Catalog { return spm2Home() }

// ELCObservation returns the ELC observation of skills template.
func ELCObservation() *Catalog { return elcObservation() }

// ByID resolves an embedded catalog by identifier.
func ByID(id string) (*Catalog, bool) {
	switch id {
	case SPM2HomeID:
		return SPM2Home(), true
	case ELCObservationID:
		return ELCObservation(), true
	default:
		return nil, false
	}
}

func (c *Catalog) ID() string          { return c.id }
func (c *Catalog) Name() string        { return c.name }
func (c *Catalog) Description() string { return c.description }

// Scale returns the response scale; empty for unscored templates.
func (c *Catalog) Scale() []Option {
	return append([]Option(nil), c.scale...)
}

// Sections returns copies of all sections in catalog order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		out[i] = s.clone()
	}
	return out
}

// SectionIDs returns section identifiers in catalog order.
func (c *Catalog) SectionIDs() []string {
	ids := make([]string, len(c.sections))
	for i, s := range c.sections {
		ids[i] = s.ID
	}
	return ids
}

// Section returns a copy of the section with the given id.
func (c *Catalog) Section(id string) (Section, bool) {
	i, ok := c.sectionIdx[id]
	if !ok {
		return Section{}, false
	}
	return c.sections[i].clone(), true
}

// Question returns a copy of a question and the id of the section holding it.
func (c *Catalog) Question(id string) (Question, string, bool) {
	sectionID, ok := c.questionIdx[id]
	if !ok {
		return Question{}, "", false
	}
	for _, q := range c.sections[c.sectionIdx[sectionID]].Questions {
		if q.ID == id {
			return q.clone(), sectionID, true
		}
	}
	return Question{}, "", false
}

// Label maps a scale value to its label, or "N/A" when the value is off the scale.
func (c *Catalog) Label(value int) string {
	for _, o := range c.scale {
		if o.Value == value {
			return o.Label
		}
	}
	return LabelNotApplicable
}

// View is the serialisable form of a catalog.
type View struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Scale       []Option  `json:"scale,omitempty"`
	Sections    []Section `json:"sections"`
}

// View returns a detached snapshot suitable for JSON rendering.
func (c *Catalog) View() View {
	return View{ID: c.id, Name: c.name, Description: c.description, Scale: c.Scale(), Sections: c.Sections()}
}

func (s Section) clone() Section {
	qs := make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		qs[i] = q.clone()
	}
	s.Questions = qs
	s.Policy = s.Policy.clone()
	return s
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
