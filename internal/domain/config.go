package domain

// VectorConfig holds vectorization settings shared by indexing and querying.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig matches paraphrase-multilingual-MiniLM-L12-v2,
// which handles mixed Cyrillic/Latin product names.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "paraphrase-multilingual-MiniLM-L12-v2",
		Dimensions:     384,
		DistanceMetric: "cosine",
	}
}

// KeyPrefix namespaces every key the service writes to the document store.
const KeyPrefix = "prefixsearch:"

// IndexName returns the search index name of a catalog.
func IndexName(catalog string) string {
	return KeyPrefix + catalog + ":idx"
}

// DocPrefix returns the key prefix shared by the documents of a catalog.
func DocPrefix(catalog string) string {
	return KeyPrefix + catalog + ":"
}
