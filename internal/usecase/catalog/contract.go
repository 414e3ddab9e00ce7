package catalog

import (
	"context"

	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
)

// Indexer stores catalog entries in a search backend.
type Indexer interface {
	EnsureIndex(ctx context.Context, recreate bool) error
	Put(ctx context.Context, entries []domcat.Entry) error
	Count(ctx context.Context) (int, error)
}
