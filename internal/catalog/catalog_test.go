package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPM2HomeStructure(t *testing.T) {
	c := SPM2Home()
	assert.Equal(t, SPM2HomeID, c.ID())
	assert.Equal(t, []string{
		"social-participation", "vision", "hearing", "touch",
		"taste-smell", "body-awareness", "balance-motion", "planning-ideas",
	}, c.SectionIDs())

	for _, s := range c.Sections() {
		assert.Len(t, s.Questions, 10, s.ID)
		for _, q := range s.Questions {
			assert.Equal(t, TypeScale, q.Type, q.ID)
		}
	}
	assert.Equal(t, []Option{{1, "Never"}, {2, "Occasionally"}, {3, "Frequently"}, {4, "Always"}}, c.Scale())
}

func TestPoliciesAttachedAtLoad(t *testing.T) {
	c := SPM2Home()

	soc, ok := c.Section(ReversedSectionID)
	require.True(t, ok)
	assert.True(t, soc.Policy.Reversed)
	assert.False(t, soc.Policy.InComposite)
	assert.Equal(t, []int{1, 2}, soc.Policy.HighlightValues)

	pla, ok := c.Section("planning-ideas")
	require.True(t, ok)
	assert.False(t, pla.Policy.Reversed)
	assert.False(t, pla.Policy.InComposite)
	assert.Equal(t, []int{3, 4}, pla.Policy.HighlightValues)

	for _, id := range CompositeSectionIDs {
		s, ok := c.Section(id)
		require.True(t, ok, id)
		assert.True(t, s.Policy.InComposite, id)
	}
}

func TestPolicyContribution(t *testing.T) {
	plain := policyFor("vision")
	reversed := policyFor(ReversedSectionID)

	for v := MinValue; v <= MaxValue; v++ {
		assert.Equal(t, v, plain.Contribution(v))
		assert.Equal(t, 5-v, reversed.Contribution(v))
	}
	for _, v := range []int{-1, 0, 5, 99} {
		assert.Zero(t, plain.Contribution(v))
		assert.Zero(t, reversed.Contribution(v))
	}
	assert.True(t, reversed.Highlights(2))
	assert.False(t, reversed.Highlights(3))
	assert.True(t, plain.Highlights(4))
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := SPM2Home()
	s, _ := c.Section("vision")
	s.Questions[0].Text = "mutated"
	s.Policy.HighlightValues[0] = 1

	fresh, _ := c.Section("vision")
	assert.NotEqual(t, "mutated", fresh.Questions[0].Text)
	assert.Equal(t, []int{3, 4}, fresh.Policy.HighlightValues)

	all := c.Sections()
	all[0].ID = "changed"
	assert.Equal(t, ReversedSectionID, c.SectionIDs()[0])
}

func TestQuestionLookupAndLabel(t *testing.T) {
	c := SPM2Home()
	q, sectionID, ok := c.Question("pla5")
	require.True(t, ok)
	assert.Equal(t, "planning-ideas", sectionID)
	assert.Equal(t, "Has trouble with tasks requiring multiple steps", q.Text)

	_, _, ok = c.Question("nope")
	assert.False(t, ok)

	assert.Equal(t, "Always", c.Label(4))
	assert.Equal(t, LabelNotApplicable, c.Label(0))
}

func TestDomainName(t *testing.T) {
	s, _ := SPM2Home().Section("taste-smell")
	assert.Equal(t, "Taste and Smell", s.DomainName())
	assert.Equal(t, "Play", Section{Title: "Play"}.DomainName())
}

func TestELCObservationTemplate(t *testing.T) {
	c := ELCObservation()
	assert.Equal(t, ELCObservationID, c.ID())
	assert.Empty(t, c.Scale())
	assert.Len(t, c.SectionIDs(), 10)

	q, sectionID, ok := c.Question("prewrite-1")
	require.True(t, ok)
	assert.Equal(t, "prewriting-strokes", sectionID)
	assert.Equal(t, []string{"Yes", "No", "Not established"}, q.Options)

	hand, _, ok := c.Question("hand-dom-1")
	require.True(t, ok)
	assert.Equal(t, TypeMultipleChoice, hand.Type)
	assert.Contains(t, hand.Options, "Not established")
}

func TestByID(t *testing.T) {
	c, ok := ByID(SPM2HomeID)
	require.True(t, ok)
	assert.Same(t, SPM2Home(), c)
	_, ok = ByID("unknown")
	assert.False(t, ok)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"missing id":     "sections: [{id: a, questions: [{id: q1, text: x}]}]",
		"no sections":    "id: x",
		"empty section":  "id: x\nscale: [{value: 1, label: Never}]\nsections: [{id: a, questions: []}]",
		"dup section":    "id: x\nscale: [{value: 1, label: Never}]\nsections: [{id: a, questions: [{id: q1, text: x}]}, {id: a, questions: [{id: q2, text: y}]}]",
		"dup question":   "id: x\nscale: [{value: 1, label: Never}]\nsections: [{id: a, questions: [{id: q1, text: x}, {id: q1, text: y}]}]",
		"unknown type":   "id: x\nsections: [{id: a, questions: [{id: q1, text: x, type: slider}]}]",
		"choice no opts": "id: x\nsections: [{id: a, questions: [{id: q1, text: x, type: multiple-choice}]}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
