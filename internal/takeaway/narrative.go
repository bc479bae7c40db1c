package takeaway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

// ErrEmptyNarrative is returned when the generator answers with no text.
var ErrEmptyNarrative = errors.New("narrative generator returned empty text")

// Prompt is a system/user message pair for a chat-style generator.
type Prompt struct {
	System string
	User   string
}

// Generator produces prose for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

const systemPrompt = "You are an experienced occupational therapist writing clinical assessment summaries. " +
	"Write clear, professional, and compassionate narratives about children's sensory processing patterns."

// NarrativeComposer asks a Generator for a short paragraph built from the section's
// highlighted answers. Sections with no highlights get a fixed sentence without a call.
type NarrativeComposer struct {
	Generator Generator
}

// Compose implements Composer.
func (n NarrativeComposer) Compose(ctx context.Context, req Request) (Takeaway, error) {
	b := SelectHighlights(req.Section, req.Responses)
	out := Takeaway{
		SectionID: req.Section.ID,
		Title:     req.Section.Title,
		Source:    SourceNarrative,
		Buckets:   b,
	}
	if b.Empty() {
		out.Text = TypicalNarrative(req.Section, req.SubjectName)
		return out, nil
	}
	if n.Generator == nil {
		return Takeaway{}, errors.New("narrative generator not configured")
	}

	text, err := n.Generator.Generate(ctx, BuildPrompt(req.Section, b, req.SubjectName))
	if err != nil {
		return Takeaway{}, fmt.Errorf("generate narrative for %s: %w", req.Section.ID, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Takeaway{}, fmt.Errorf("generate narrative for %s: %w", req.Section.ID, ErrEmptyNarrative)
	}
	out.Text = text
	return out, nil
}

// TypicalNarrative is the sentence used when a section has nothing notable.
func TypicalNarrative(section catalog.Section, subjectName string) string {
	return fmt.Sprintf("%s shows typical responses in the %s domain, with no concerning patterns identified.",
		subjectName, section.DomainName())
}

// BuildPrompt lists the highlighted items, most concerning label first.
func BuildPrompt(section catalog.Section, b Buckets, subjectName string) Prompt {
	most, less := LabelAlways, LabelFrequently
	if section.Policy.Reversed {
		most, less = LabelNever, LabelOccasionally
	}
	domain := section.DomainName()

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an occupational therapist writing a clinical assessment summary. "+
		"Based on the SPM-2 assessment responses for the %s section, write a concise paragraph (3-5 sentences) summarizing the key observations.\n\n", domain)
	fmt.Fprintf(&sb, "Client Name: %s\n", subjectName)
	fmt.Fprintf(&sb, "Section: %s - %s\n\n", section.Title, section.Description)
	writeItems(&sb, most, "most concerning", b.Items(most))
	writeItems(&sb, less, "concerning", b.Items(less))
	sb.WriteString("Write a professional, compassionate narrative paragraph that:\n")
	sb.WriteString("1. Uses the client's first name naturally\n")
	sb.WriteString("2. Summarizes the patterns observed\n")
	fmt.Fprintf(&sb, "3. Mentions the specific behaviors that occur %q and %q\n", most, less)
	sb.WriteString("4. Uses clear, parent-friendly language\n")
	sb.WriteString("5. Maintains a neutral, observational tone\n\n")
	sb.WriteString("Write only the paragraph, no headings or labels:")

	return Prompt{System: systemPrompt, User: sb.String()}
}

func writeItems(sb *strings.Builder, label, weight string, items []string) {
	fmt.Fprintf(sb, "Responses marked as %q (%s):\n", NormaliseCase(label), weight)
	if len(items) == 0 {
		sb.WriteString("None\n\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, item)
	}
	sb.WriteString("\n")
}
