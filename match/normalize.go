package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases text, collapses whitespace runs to a single space
// and trims. Empty or blank input yields "".
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Strict folds accents, lower-cases and replaces every run of characters
// outside [a-z0-9] with a single space. "Château Müller-Thurgau" becomes
// "chateau muller thurgau".
func Strict(text string) string {
	folded := foldAccents(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokens splits text into Strict-normalized tokens.
func Tokens(text string) []string {
	return strings.Fields(Strict(text))
}

// foldAccents strips combining marks. A transformer chain keeps state, so a
// fresh one is built per call for concurrent use.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
