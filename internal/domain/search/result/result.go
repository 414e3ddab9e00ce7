// Package result holds scored hits returned by a search backend.
package result

import "sort"

// Hit is one catalog entry returned by a backend.
type Hit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Weight   string  `json:"weight,omitempty"`
	Score    float64 `json:"score"`
}

// SortByScore orders hits by descending score. Equal scores keep their order.
func SortByScore(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
}

// TopScore returns the score of the first hit, or 0 for an empty list.
func TopScore(hits []Hit) float64 {
	if len(hits) == 0 {
		return 0
	}
	return hits[0].Score
}
