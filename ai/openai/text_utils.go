package openai

import "strings"

// scrubString removes characters that tend to confuse JSON-mode replies
// (quotes, braces, backticks) and collapses whitespace. Apostrophes and
// hyphens are kept because they are part of many producer names.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune("\"`{}[]<>", r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
