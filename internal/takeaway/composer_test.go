package takeaway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   map[string]time.Duration
	prompts []Prompt
}

func (s *stubGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	for marker, d := range s.delay {
		if strings.Contains(p.User, marker) {
			time.Sleep(d)
		}
	}
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()
	return s.text, s.err
}

type failingComposer struct{ err error }

func (f failingComposer) Compose(context.Context, Request) (Takeaway, error) {
	return Takeaway{}, f.err
}

func TestTemplateComposer(t *testing.T) {
	vision := section(t, "vision")
	out, err := TemplateComposer{}.Compose(context.Background(), Request{
		Section: vision, Responses: map[string]int{"vis1": 4}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "vision", out.SectionID)
	assert.Equal(t, SourceTemplate, out.Source)
	assert.Equal(t, "Ada always: Seems bothered by bright lights or sunlight", out.Text)
}

func TestNarrativeComposerSkipsCallWithoutHighlights(t *testing.T) {
	gen := &stubGenerator{text: "should not be used"}
	out, err := NarrativeComposer{Generator: gen}.Compose(context.Background(), Request{
		Section: section(t, "taste-smell"), Responses: map[string]int{"ts1": 1, "ts2": 2}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, "Ada shows typical responses in the Taste and Smell domain, with no concerning patterns identified.", out.Text)
	assert.Equal(t, SourceNarrative, out.Source)
}

func TestNarrativeComposerUsesGenerator(t *testing.T) {
	gen := &stubGenerator{text: "  Ada often covers her eyes.  "}
	out, err := NarrativeComposer{Generator: gen}.Compose(context.Background(), Request{
		Section: section(t, "vision"), Responses: map[string]int{"vis1": 4, "vis2": 3}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada often covers her eyes.", out.Text)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0].User, "Responses marked as \"Always\" (most concerning):\n1. Seems bothered by bright lights or sunlight")
	assert.Contains(t, gen.prompts[0].User, "Responses marked as \"Frequently\" (concerning):\n1. Covers eyes or squints in ordinary lighting")
	assert.Contains(t, gen.prompts[0].User, "Client Name: Ada")
}

func TestNarrativeComposerReversedPromptUsesLowFrequencyItems(t *testing.T) {
	gen := &stubGenerator{text: "text"}
	_, err := NarrativeComposer{Generator: gen}.Compose(context.Background(), Request{
		Section: section(t, catalog.ReversedSectionID), Responses: map[string]int{"soc1": 1, "soc3": 4}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0].User, "Responses marked as \"Never\" (most concerning):\n1. Plays cooperatively with other children")
	assert.Contains(t, gen.prompts[0].User, "Responses marked as \"Occasionally\" (concerning):\nNone")
	assert.NotContains(t, gen.prompts[0].User, "Shares toys")
}

func TestNarrativeComposerErrors(t *testing.T) {
	req := Request{Section: section(t, "vision"), Responses: map[string]int{"vis1": 4}, SubjectName: "Ada"}

	_, err := NarrativeComposer{Generator: &stubGenerator{err: errors.New("timeout")}}.Compose(context.Background(), req)
	assert.ErrorContains(t, err, "timeout")

	_, err = NarrativeComposer{Generator: &stubGenerator{text: "   "}}.Compose(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmptyNarrative)

	_, err = NarrativeComposer{}.Compose(context.Background(), req)
	assert.Error(t, err)
}

func TestFallbackComposer(t *testing.T) {
	var outcomes []string
	fc := FallbackComposer{
		Primary:  NarrativeComposer{Generator: &stubGenerator{err: errors.New("down")}},
		Fallback: TemplateComposer{},
		Observe:  func(o string) { outcomes = append(outcomes, o) },
	}
	out, err := fc.Compose(context.Background(), Request{
		Section: section(t, "vision"), Responses: map[string]int{"vis1": 4}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)
	assert.Equal(t, "Ada always: Seems bothered by bright lights or sunlight", out.Text)
	assert.Equal(t, []string{"fallback"}, outcomes)

	fc.Primary = NarrativeComposer{Generator: &stubGenerator{text: "fine"}}
	out, err = fc.Compose(context.Background(), Request{
		Section: section(t, "vision"), Responses: map[string]int{"vis1": 4}, SubjectName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceNarrative, out.Source)
	assert.Equal(t, []string{"fallback", "success"}, outcomes)
}

func TestFallbackComposerBothFail(t *testing.T) {
	fc := FallbackComposer{Primary: failingComposer{errors.New("a")}, Fallback: failingComposer{errors.New("b")}}
	_, err := fc.Compose(context.Background(), Request{Section: section(t, "vision")})
	assert.ErrorContains(t, err, "a")
	assert.ErrorContains(t, err, "b")
}

func TestComposeSectionsKeysResultsBySection(t *testing.T) {
	cat := catalog.SPM2Home()
	responses := map[string]int{}
	for _, s := range cat.Sections() {
		for _, q := range s.Questions {
			responses[q.ID] = 3
		}
	}
	gen := &stubGenerator{
		text: "narrative",
		delay: map[string]time.Duration{
			"Social Participation": 30 * time.Millisecond,
			"Vision":               20 * time.Millisecond,
		},
	}
	composer := FallbackComposer{Primary: NarrativeComposer{Generator: gen}, Fallback: TemplateComposer{}}

	out, err := ComposeSections(context.Background(), composer, cat.Sections(), responses, "Ada")
	require.NoError(t, err)
	require.Len(t, out, 8)
	for i, id := range cat.SectionIDs() {
		assert.Equal(t, id, out[i].SectionID)
	}
}

func TestComposeSectionsCollectsErrors(t *testing.T) {
	sections := catalog.SPM2Home().Sections()[:2]
	out, err := ComposeSections(context.Background(), failingComposer{errors.New("nope")}, sections, nil, "Ada")
	assert.Empty(t, out)
	assert.ErrorContains(t, err, "nope")
}
