package search

import (
	"context"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/result"
)

// Backend executes a hybrid request against a document index.
// Implementations drop hits without a name and return the rest in rank order.
type Backend interface {
	Search(ctx context.Context, req *request.Request) ([]result.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
