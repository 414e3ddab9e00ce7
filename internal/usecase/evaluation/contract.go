package evaluation

import (
	"context"

	"github.com/kailas-cloud/prefixsearch/internal/usecase/search"
)

// Searcher runs one end-to-end search.
type Searcher interface {
	Search(ctx context.Context, raw string) (search.Outcome, error)
}
