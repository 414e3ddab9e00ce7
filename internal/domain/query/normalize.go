// Package query turns raw user input into the normalized forms used for matching:
// canonical text, keyboard-layout and phonetic transliterations, and the numeric
// quantity filter.
package query

import (
	"strings"
	"unicode"
)

// letterFolder maps letter variants to their base form.
var letterFolder = strings.NewReplacer("ё", "е", "Ё", "е")

// Normalize lowercases text, folds ё to е, strips everything except letters, numbers,
// underscore and whitespace, then squeezes whitespace runs into single spaces.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	text = letterFolder.Replace(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case isWordRune(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NoSpace removes all spaces from an already normalized string.
func NoSpace(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}

// IsASCII reports whether s consists of ASCII runes only.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= unicode.MaxASCII+1 {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
