package match

import (
	"strconv"
	"strings"

	"github.com/poiesic/wheretobuy/core"
)

// DefaultNegativeKeywords lists substrings that mark a listing as something
// other than a sellable full product.
var DefaultNegativeKeywords = []string{
	"empty",
	"bottle only",
	"decanted",
	"decant",
	"used",
	"vintage bottle",
	"old bottle",
	"collector",
	"display",
	"ornamental",
	"set of",
	"pack of",
	"lot of",
	"souvenir",
	"miniature",
}

// KeywordFilter excludes candidates whose name contains a negative keyword
// as a plain substring, so "empty" also hits "emptyish".
// It is stateless after construction and safe for concurrent use.
type KeywordFilter struct {
	keywords []string
}

// Exclusion records a candidate dropped before verification. Keyword is
// empty when the candidate was dropped for another reason.
type Exclusion struct {
	Candidate core.Candidate
	Keyword   string
	Reason    string
}

// NewKeywordFilter creates a filter over DefaultNegativeKeywords plus any
// extra keywords. Keywords are normalized the same way as candidate names.
func NewKeywordFilter(extra ...string) *KeywordFilter {
	seen := make(map[string]bool)
	keywords := make([]string, 0, len(DefaultNegativeKeywords)+len(extra))
	for _, list := range [][]string{DefaultNegativeKeywords, extra} {
		for _, kw := range list {
			kw = Strict(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	return &KeywordFilter{keywords: keywords}
}

// Keywords returns the normalized keyword list.
func (f *KeywordFilter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// Match returns the first keyword found in the normalized name.
func (f *KeywordFilter) Match(name string) (string, bool) {
	normalized := Strict(name)
	for _, kw := range f.keywords {
		if strings.Contains(normalized, kw) {
			return kw, true
		}
	}
	return "", false
}

// IsSellable reports whether no negative keyword occurs in the name.
func (f *KeywordFilter) IsSellable(name string) bool {
	_, hit := f.Match(name)
	return !hit
}

// Filter splits candidates into sellable ones and exclusions, preserving order.
func (f *KeywordFilter) Filter(candidates []core.Candidate) ([]core.Candidate, []Exclusion) {
	kept := make([]core.Candidate, 0, len(candidates))
	var excluded []Exclusion
	for _, c := range candidates {
		if kw, hit := f.Match(c.ProductName); hit {
			excluded = append(excluded, Exclusion{Candidate: c, Keyword: kw, Reason: "negative keyword " + strconv.Quote(kw)})
			continue
		}
		kept = append(kept, c)
	}
	return kept, excluded
}
