// Package request describes the backend-neutral hybrid search request.
package request

import (
	"fmt"

	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength          = 4096
	DefaultTopK             = 10
	MaxTopK                 = 500
	DefaultVectorK          = 20
	DefaultVectorCandidates = 100
	DefaultFuzziness        = 1
	MaxFuzziness            = 2
)

// Indexed catalog fields addressed by the request.
const (
	FieldName         = "name"
	FieldNameVariants = "name_variants"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldBrand        = "brand"
	FieldPrice        = "price"
	FieldQuantity     = "weight"
	FieldWeightNum    = "weight_num"
	FieldVector       = "vector"
)

// Fusion selects how lexical and vector scores are combined.
type Fusion string

// Supported fusion policies.
const (
	// FusionSum adds the lexical score and the vector similarity of each document.
	FusionSum Fusion = "sum"
	// FusionRRF ranks each signal separately and combines ranks.
	FusionRRF Fusion = "rrf"
)

// IsValid reports whether f is a known fusion policy.
func (f Fusion) IsValid() bool {
	return f == FusionSum || f == FusionRRF
}

// FieldWeight is a boost applied to one lexical field.
type FieldWeight struct {
	Field  string  `json:"field"`
	Weight float64 `json:"weight"`
}

// PriceDecay multiplies scores by a gaussian centered on Origin.
// Decay is the multiplier at distance Scale.
type PriceDecay struct {
	Origin float64 `json:"origin"`
	Scale  float64 `json:"scale"`
	Decay  float64 `json:"decay"`
}

// Request is a fully specified hybrid search. Builders fill it, backends read it.
type Request struct {
	// LeftText is the normalized query matched as a prefix against FieldWeights.
	LeftText     string        `json:"left_text"`
	FieldWeights []FieldWeight `json:"field_weights"`

	// VariantsText is the space-joined set of layout variants matched fuzzily
	// against name_variants.
	VariantsText string `json:"variants_text"`
	Fuzziness    int    `json:"fuzziness"`

	NumericFilter *filter.Numeric `json:"numeric_filter,omitempty"`

	Vector           []float32 `json:"-"`
	VectorK          int       `json:"vector_k"`
	VectorCandidates int       `json:"vector_candidates"`

	TopK         int         `json:"top_k"`
	MinScore     float64     `json:"min_score"`
	ReturnFields []string    `json:"return_fields"`
	Fusion       Fusion      `json:"fusion"`
	PriceDecay   *PriceDecay `json:"price_decay,omitempty"`
}

// DefaultFieldWeights are the boosts for name, name_variants and description.
func DefaultFieldWeights() []FieldWeight {
	return []FieldWeight{
		{Field: FieldName, Weight: 3},
		{Field: FieldNameVariants, Weight: 2},
		{Field: FieldDescription, Weight: 1},
	}
}

// DefaultReturnFields lists the fields every hit carries.
func DefaultReturnFields() []string {
	return []string{FieldName, FieldCategory, FieldPrice, FieldQuantity}
}

// HasVector reports whether the request carries a KNN clause.
func (r *Request) HasVector() bool {
	return len(r.Vector) > 0 && r.VectorK > 0
}

// HasText reports whether the request carries any lexical clause.
func (r *Request) HasText() bool {
	return r.LeftText != "" || r.VariantsText != ""
}

// Validate checks the request bounds before it reaches a backend.
func (r *Request) Validate() error {
	if len(r.LeftText) > MaxQueryLength {
		return fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if r.TopK <= 0 || r.TopK > MaxTopK {
		return fmt.Errorf("top_k must be between 1 and %d", MaxTopK)
	}
	if r.Fuzziness < 0 || r.Fuzziness > MaxFuzziness {
		return fmt.Errorf("fuzziness must be between 0 and %d", MaxFuzziness)
	}
	if r.MinScore < 0 {
		return fmt.Errorf("min_score must not be negative")
	}
	if !r.Fusion.IsValid() {
		return fmt.Errorf("invalid fusion: %q", r.Fusion)
	}
	if r.VectorCandidates < r.VectorK {
		return fmt.Errorf("vector_candidates must be >= vector_k")
	}
	if r.NumericFilter != nil && !r.NumericFilter.Op.IsValid() {
		return fmt.Errorf("invalid filter operator %q", r.NumericFilter.Op)
	}
	if d := r.PriceDecay; d != nil && (d.Scale <= 0 || d.Decay <= 0 || d.Decay >= 1) {
		return fmt.Errorf("price decay needs scale > 0 and decay in (0, 1)")
	}
	return nil
}
