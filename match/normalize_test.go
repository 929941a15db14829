package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lower-cases", "Old Oak RESERVE", "old oak reserve"},
		{"collapses whitespace", "  Old   Oak\tReserve \n", "old oak reserve"},
		{"keeps punctuation", "Old-Oak (2015)", "old-oak (2015)"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestStrict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips punctuation", "Old Oak (2015)!!", "old oak 2015"},
		{"folds accents", "Château Müller-Thurgau", "chateau muller thurgau"},
		{"separator runs collapse", "Old -- Oak // Reserve", "old oak reserve"},
		{"leading and trailing separators", "...Old Oak...", "old oak"},
		{"possessive", "Collector's Edition", "collector s edition"},
		{"only separators", "--- !!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strict(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Old Oak Reserve",
		"  OLD\t\toak   Réserve 2015 ",
		"Château Müller-Thurgau (Magnum) 1.5L",
		"Pack-of 6 / Miniature",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize(%q)", in)

		strict := Strict(in)
		assert.Equal(t, strict, Strict(strict), "Strict(%q)", in)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"old", "oak", "2015"}, Tokens("Old-Oak, 2015"))
	assert.Empty(t, Tokens("  "))
}
