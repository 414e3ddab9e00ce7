// Package db defines the storage contract for the catalog index and embedding cache.
package db

import (
	"context"
	"time"
)

// Store is everything a search backend driver provides. Consumers depend on
// the narrow interfaces below.
//
//nolint:interfacebloat // driver facade; repositories take sub-interfaces
type Store interface {
	Pinger
	DocumentStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one catalog document: its key and flat string fields.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// DocumentStore writes catalog documents stored as hashes.
type DocumentStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// KVStore holds opaque values such as cached embeddings. ttl <= 0 never expires.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides search index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs the lexical and vector legs of a hybrid query.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
