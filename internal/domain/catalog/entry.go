// Package catalog holds the product record indexed for search.
package catalog

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/prefixsearch/internal/domain"
	"github.com/kailas-cloud/prefixsearch/internal/domain/query"
)

// Fields are the raw attributes of a catalog record as read from the source file.
type Fields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Brand       string
	Weight      string
}

// Entry is a catalog record (immutable value object).
// NameVariants always contains the normalized name as its first element.
type Entry struct {
	id           string
	name         string
	description  string
	price        float64
	category     string
	brand        string
	weight       string
	nameVariants []string
	embedding    []float32
}

// NewEntry validates a record and derives its normalized name variants.
// Name is required; a negative price is reset to 0.
func NewEntry(id string, f Fields) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("entry ID is required: %w", domain.ErrInvalidEntry)
	}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Entry{}, fmt.Errorf("entry %s: name is required: %w", id, domain.ErrInvalidEntry)
	}
	price := f.Price
	if price < 0 {
		price = 0
	}

	return Entry{
		id:           id,
		name:         name,
		description:  strings.TrimSpace(f.Description),
		price:        price,
		category:     strings.TrimSpace(f.Category),
		brand:        strings.TrimSpace(f.Brand),
		weight:       strings.TrimSpace(f.Weight),
		nameVariants: query.Variants(query.Normalize(name)),
	}, nil
}

// ID returns the entry identifier.
func (e *Entry) ID() string { return e.id }

// Name returns the display name.
func (e *Entry) Name() string { return e.name }

// Description returns the free-text description.
func (e *Entry) Description() string { return e.description }

// Price returns the price, 0 when unknown.
func (e *Entry) Price() float64 { return e.price }

// Category returns the category, empty when unknown.
func (e *Entry) Category() string { return e.category }

// Brand returns the brand, empty when unknown.
func (e *Entry) Brand() string { return e.brand }

// Weight returns the free-text quantity, e.g. "10л".
func (e *Entry) Weight() string { return e.weight }

// NameVariants returns the normalized name followed by its keyboard-layout variants.
func (e *Entry) NameVariants() []string { return e.nameVariants }

// Embedding returns the entry vector, nil until embedded.
func (e *Entry) Embedding() []float32 { return e.embedding }

// NormalizedName returns the canonical form of the name.
func (e *Entry) NormalizedName() string { return e.nameVariants[0] }

// WeightValue parses the numeric part of Weight.
func (e *Entry) WeightValue() (float64, bool) {
	return query.ParseQuantity(e.weight)
}

// EmbeddingText is the text vectorized for the entry: normalized name and description.
func (e *Entry) EmbeddingText() string {
	if e.description == "" {
		return e.NormalizedName()
	}
	return e.NormalizedName() + " " + e.description
}

// WithEmbedding returns a copy carrying the given vector.
func (e *Entry) WithEmbedding(v []float32) Entry {
	c := *e
	c.embedding = v
	return c
}
