package domain

import "errors"

var (
	// ErrInputNotFound signals a missing catalog or query file.
	ErrInputNotFound = errors.New("input not found")
	// ErrInvalidEntry signals a catalog record that cannot be indexed.
	ErrInvalidEntry = errors.New("invalid catalog entry")
	// ErrInvalidQuery signals a search request that cannot be built.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIndexNotFound signals that the search index has not been created yet.
	ErrIndexNotFound = errors.New("index not found")
	// ErrBackend signals a failed call to the search backend.
	ErrBackend = errors.New("search backend error")
	// ErrVectorDimMismatch signals an embedding of unexpected length.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
