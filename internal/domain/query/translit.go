package query

import "strings"

// latinToCyrillic is the ЙЦУКЕН layout as seen from a QWERTY keyboard:
// the key a user pressed mapped to the letter they meant.
var latinToCyrillic = map[rune]rune{
	'a': 'ф', 'b': 'и', 'c': 'с', 'd': 'в', 'e': 'у', 'f': 'а', 'g': 'п', 'h': 'р',
	'i': 'ш', 'j': 'о', 'k': 'л', 'l': 'д', 'm': 'ь', 'n': 'т', 'o': 'щ', 'p': 'з',
	'q': 'й', 'r': 'к', 's': 'ы', 't': 'е', 'u': 'г', 'v': 'м', 'w': 'ц', 'x': 'ч',
	'y': 'н', 'z': 'я', ';': 'ж', '\'': 'э', ',': 'б', '.': 'ю', '/': '.', '[': 'х',
	']': 'ъ',
}

var cyrillicToLatin = invert(latinToCyrillic)

func invert(m map[rune]rune) map[rune]rune {
	out := make(map[rune]rune, len(m))
	for k, v := range m {
		if k != v {
			out[v] = k
		}
	}
	return out
}

// ToCyrillic reinterprets keystrokes typed on a Latin layout as Cyrillic letters.
func ToCyrillic(text string) string {
	return mapRunes(text, latinToCyrillic)
}

// ToLatin reinterprets keystrokes typed on a Cyrillic layout as Latin keys.
func ToLatin(text string) string {
	return mapRunes(text, cyrillicToLatin)
}

func mapRunes(text string, m map[rune]rune) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if mapped, ok := m[r]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Variants returns text, its Latin-layout and Cyrillic-layout readings, deduplicated.
// The first element is always text.
func Variants(text string) []string {
	out := []string{text}
	for _, v := range []string{ToLatin(text), ToCyrillic(text)} {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// phoneticDigraphs are tried before single letters, longest first.
var phoneticDigraphs = []struct {
	latin    string
	cyrillic string
}{
	{"shch", "щ"},
	{"sch", "щ"},
	{"sh", "ш"},
	{"ch", "ч"},
	{"zh", "ж"},
	{"kh", "х"},
	{"ts", "ц"},
	{"ya", "я"},
	{"yu", "ю"},
	{"yo", "е"},
	{"ja", "я"},
	{"ju", "ю"},
}

var phoneticLetters = map[byte]string{
	'a': "а", 'b': "б", 'c': "к", 'd': "д", 'e': "е", 'f': "ф", 'g': "г", 'h': "х",
	'i': "и", 'j': "й", 'k': "к", 'l': "л", 'm': "м", 'n': "н", 'o': "о", 'p': "п",
	'q': "к", 'r': "р", 's': "с", 't': "т", 'u': "у", 'v': "в", 'w': "в", 'x': "кс",
	'y': "ы", 'z': "з",
}

// Phonetic reads romanized Russian back into Cyrillic ("moloko" -> "молоко").
// Non-letter bytes pass through unchanged. Input is expected to be normalized ASCII.
func Phonetic(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 2)

	for i := 0; i < len(text); {
		matched := false
		for _, d := range phoneticDigraphs {
			if strings.HasPrefix(text[i:], d.latin) {
				b.WriteString(d.cyrillic)
				i += len(d.latin)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if cyr, ok := phoneticLetters[text[i]]; ok {
			b.WriteString(cyr)
		} else {
			b.WriteByte(text[i])
		}
		i++
	}
	return b.String()
}
