package takeaway

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
)

// Source records which path produced a takeaway.
type Source string

const (
	SourceTemplate  Source = "template"
	SourceNarrative Source = "narrative"
	SourceFallback  Source = "fallback"
	SourceCache     Source = "cache"
)

// Request carries everything a composer needs for one section.
type Request struct {
	Section     catalog.Section
	Responses   map[string]int
	SubjectName string
}

// Takeaway is the composed summary for one section.
type Takeaway struct {
	SectionID string  `json:"section_id"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Source    Source  `json:"source"`
	Buckets   Buckets `json:"highlights"`
}

// Composer produces a takeaway for one section.
type Composer interface {
	Compose(ctx context.Context, req Request) (Takeaway, error)
}

// TemplateComposer is the deterministic composer. It never fails.
type TemplateComposer struct{}

// Compose implements Composer.
func (TemplateComposer) Compose(_ context.Context, req Request) (Takeaway, error) {
	b := SelectHighlights(req.Section, req.Responses)
	return Takeaway{
		SectionID: req.Section.ID,
		Title:     req.Section.Title,
		Text:      ComposeTakeaway(b, req.SubjectName),
		Source:    SourceTemplate,
		Buckets:   b,
	}, nil
}

// FallbackComposer tries Primary and answers with Fallback when it fails.
type FallbackComposer struct {
	Primary  Composer
	Fallback Composer
	Logger   *zap.Logger
	// Observe, when set, receives "success" or "fallback" per call.
	Observe func(outcome string)
}

// Compose implements Composer. It only returns an error when the fallback fails too.
func (f FallbackComposer) Compose(ctx context.Context, req Request) (Takeaway, error) {
	out, err := f.Primary.Compose(ctx, req)
	if err == nil {
		f.observe("success")
		return out, nil
	}

	f.observe("fallback")
	if f.Logger != nil {
		f.Logger.Warn("narrative takeaway failed, using template",
			zap.String("section_id", req.Section.ID),
			zap.Error(err),
		)
	}
	out, fbErr := f.Fallback.Compose(ctx, req)
	if fbErr != nil {
		return Takeaway{}, errors.Join(err, fbErr)
	}
	out.Source = SourceFallback
	return out, nil
}

func (f FallbackComposer) observe(outcome string) {
	if f.Observe != nil {
		f.Observe(outcome)
	}
}

// ComposeSections runs composer for each section concurrently. Results follow the
// order of sections regardless of completion order. A section whose composer fails
// is omitted and its error collected.
func ComposeSections(ctx context.Context, composer Composer, sections []catalog.Section, responses map[string]int, subjectName string) ([]Takeaway, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Takeaway, len(sections))
		errs    []error
	)
	for _, s := range sections {
		wg.Add(1)
		go func(section catalog.Section) {
			defer wg.Done()
			out, err := composer.Compose(ctx, Request{Section: section, Responses: responses, SubjectName: subjectName})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results[section.ID] = out
		}(s)
	}
	wg.Wait()

	ordered := make([]Takeaway, 0, len(results))
	for _, s := range sections {
		if out, ok := results[s.ID]; ok {
			ordered = append(ordered, out)
		}
	}
	return ordered, errors.Join(errs...)
}
