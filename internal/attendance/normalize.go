package attendance

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleCase upper-cases the first letter of every whitespace-separated word and
// lower-cases the rest. Words are re-joined with single spaces.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// NormalizeName joins first and last, title-cases the result and splits it
// again after the first word. Whatever word boundary a strategy guessed, the
// given name is always exactly one word and the rest is the surname.
func NormalizeName(first, last string) (string, string) {
	words := strings.Fields(TitleCase(first + " " + last))
	if len(words) == 0 {
		return "", ""
	}
	return words[0], strings.Join(words[1:], " ")
}
