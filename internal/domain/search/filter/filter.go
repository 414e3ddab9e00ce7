// Package filter describes numeric pre-filters attached to a search request.
package filter

import "fmt"

// Op is a numeric comparison operator.
type Op string

// Supported comparison operators.
const (
	GTE Op = "gte"
	GT  Op = "gt"
	LTE Op = "lte"
	LT  Op = "lt"
)

// IsValid reports whether op is one of the supported operators.
func (o Op) IsValid() bool {
	return o == GTE || o == GT || o == LTE || o == LT
}

// Symbol returns the comparison sign used in logs.
func (o Op) Symbol() string {
	switch o {
	case GTE:
		return ">="
	case GT:
		return ">"
	case LTE:
		return "<="
	case LT:
		return "<"
	}
	return string(o)
}

// Numeric restricts hits to documents whose numeric field satisfies Op Value.
type Numeric struct {
	Field string  `json:"field"`
	Op    Op      `json:"op"`
	Value float64 `json:"value"`
}

// Matches reports whether v satisfies the condition.
func (n Numeric) Matches(v float64) bool {
	switch n.Op {
	case GTE:
		return v >= n.Value
	case GT:
		return v > n.Value
	case LTE:
		return v <= n.Value
	case LT:
		return v < n.Value
	}
	return false
}

// String renders the condition, e.g. "weight_num >= 0.5".
func (n Numeric) String() string {
	return fmt.Sprintf("%s %s %g", n.Field, n.Op.Symbol(), n.Value)
}
