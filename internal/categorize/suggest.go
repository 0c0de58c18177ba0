package categorize

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"pennie/internal/core"
)

const maxSuggestDistance = 2

// SuggestCategory resolves a category label that may contain a typo
// ("Food & Dinning", "shoping"). Exact case-insensitive names always win;
// otherwise the closest member within maxSuggestDistance edits is returned,
// ties going to the earlier category in taxonomy order.
func SuggestCategory(label string) (core.Category, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return core.Other, false
	}
	if c, ok := core.ParseCategory(label); ok {
		return c, true
	}
	lower := strings.ToLower(label)
	best, bestDist := core.Other, maxSuggestDistance+1
	for _, c := range core.Categories() {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(string(c)))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist > maxSuggestDistance {
		return core.Other, false
	}
	return best, true
}
