package service

import (
	"fmt"
	"slices"
	"sort"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

// validateSPMResponses checks every key is a catalog question and every value is on the scale.
func validateSPMResponses(cat *catalog.Catalog, responses map[string]int) error {
	for _, id := range sortedKeys(responses) {
		if _, _, ok := cat.Question(id); !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown question %q", id))
		}
		if v := responses[id]; v < catalog.MinValue || v > catalog.MaxValue {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question %q: value %d outside %d..%d", id, v, catalog.MinValue, catalog.MaxValue))
		}
	}
	return nil
}

// validateObservationResponses checks answers against the template's options.
func validateObservationResponses(template *catalog.Catalog, responses map[string]string) error {
	for _, id := range sortedKeys(responses) {
		q, _, ok := template.Question(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown question %q", id))
		}
		answer := responses[id]
		if answer == "" || len(q.Options) == 0 {
			continue
		}
		if !slices.Contains(q.Options, answer) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question %q: %q is not an option", id, answer))
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
