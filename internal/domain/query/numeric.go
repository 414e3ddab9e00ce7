package query

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/prefixsearch/internal/domain/search/filter"
)

// WeightField is the indexed numeric field holding the parsed catalog quantity.
const WeightField = "weight_num"

// units recognized after a number, longest first so "мл" wins over "л".
var units = []string{"мл", "кг", "шт", "pcs", "ml", "kg", "л", "г", "l", "g"}

// ExtractFilter scans the query for the first "<number><unit>" token ("10л", "3 кг",
// "0.5л") and returns a filter requiring the catalog quantity to be at least that number.
// Returns nil when the query has no quantity.
func ExtractFilter(raw string) *filter.Numeric {
	q, ok := FirstQuantity(raw)
	if !ok {
		return nil
	}
	return &filter.Numeric{Field: WeightField, Op: filter.GTE, Value: q.Value}
}

// Quantity is a number followed by a recognized unit.
type Quantity struct {
	Value float64
	Unit  string
}

// FirstQuantity runs the scanner over the lowercased input. Grammar:
//
//	quantity := NUMBER SPACE? UNIT (not followed by a letter)
//	NUMBER   := DIGITS ([.,] DIGITS)?
func FirstQuantity(raw string) (Quantity, bool) {
	s := []rune(strings.ToLower(raw))

	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) || (i > 0 && isDigit(s[i-1])) {
			continue
		}

		numEnd, value, ok := scanNumber(s, i)
		if !ok {
			continue
		}

		j := numEnd
		for j < len(s) && s[j] == ' ' {
			j++
		}
		if j-numEnd > 1 {
			continue
		}

		if unit, ok := scanUnit(s, j); ok {
			return Quantity{Value: value, Unit: unit}, true
		}
	}
	return Quantity{}, false
}

// ParseQuantity extracts the first number from a free-text quantity such as "10л",
// "3 кг" or "0,5 л". The unit is not required.
func ParseQuantity(text string) (float64, bool) {
	s := []rune(text)
	for i := range s {
		if !isDigit(s[i]) {
			continue
		}
		if _, v, ok := scanNumber(s, i); ok {
			return v, true
		}
		return 0, false
	}
	return 0, false
}

// scanNumber reads DIGITS ([.,] DIGITS)? starting at i and returns the end offset.
func scanNumber(s []rune, i int) (int, float64, bool) {
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j+1 < len(s) && (s[j] == '.' || s[j] == ',') && isDigit(s[j+1]) {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}

	text := strings.Replace(string(s[i:j]), ",", ".", 1)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return i, 0, false
	}
	return j, v, true
}

func scanUnit(s []rune, i int) (string, bool) {
	for _, u := range units {
		ur := []rune(u)
		end := i + len(ur)
		if end > len(s) || string(s[i:end]) != u {
			continue
		}
		if end < len(s) && unicode.IsLetter(s[end]) {
			continue
		}
		return u, true
	}
	return "", false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
