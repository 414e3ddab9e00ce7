package db

import (
	"errors"
	"fmt"
)

// DistanceMetric used by KNN queries over the vector field.
type DistanceMetric string

const (
	DistanceCosine DistanceMetric = "COSINE"
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
)

// IndexFieldType enumerates the catalog schema field kinds.
type IndexFieldType int

const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldText
	IndexFieldVector
)

// IndexField describes a single field in a search index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TEXT
	TextWeight float64 // 0 keeps the server default (1.0)
	TextNoStem bool

	// TAG
	TagSeparator string

	// VECTOR (always HNSW over FLOAT32)
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition is a search index over hashes sharing key prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks names, duplicates and per-type options.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch {
		case f.Type == IndexFieldVector && f.VectorDim <= 0:
			return fmt.Errorf("field %q: vector dimensions must be positive", f.Name)
		case f.Type == IndexFieldText && f.TextWeight < 0:
			return fmt.Errorf("field %q: text weight must not be negative", f.Name)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s is non-empty and matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
