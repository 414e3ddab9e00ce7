package search

import (
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

// PrefixBonus is added to hits whose normalized name starts with the query.
const PrefixBonus = 1.0

// Rerank boosts literal prefix hits and re-sorts by descending score.
// Ties keep backend order. hits is not modified.
func Rerank(hits []result.Hit, q query.Query) []result.Hit {
	out := make([]result.Hit, len(hits))
	copy(out, hits)

	if q.Text != "" {
		for i := range out {
			if strings.HasPrefix(query.Normalize(out[i].Name), q.Text) {
				out[i].Score += PrefixBonus
			}
		}
	}
	result.SortByScore(out)
	return out
}
