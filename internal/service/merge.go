package service

import (
	"math"
	"sort"

	"github.com/cloo-solutions/askd/internal/domain"
)

// MergeContext combines the org-tier and domain-tier result sets into one
// ordered context set: concatenate, stable-sort by ascending distance, then
// truncate to maxContext entries. Deterministic for a given pair of inputs,
// independent of which tier search finished first.
func MergeContext(org, dom []domain.SearchResult, maxContext int) []domain.SearchResult {
	merged := make([]domain.SearchResult, 0, len(org)+len(dom))
	merged = append(merged, org...)
	merged = append(merged, dom...)

	sort.SliceStable(merged, func(i, j int) bool {
		return sortDistance(merged[i].Distance) < sortDistance(merged[j].Distance)
	})

	if maxContext >= 0 && len(merged) > maxContext {
		merged = merged[:maxContext]
	}
	return merged
}

// sortDistance treats missing and non-finite distances as 0 so they sort
// ahead rather than poisoning the ordering.
func sortDistance(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}
