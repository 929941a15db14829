package match

import (
	"slices"
	"strings"
)

// Ratio returns the Indel similarity of a and b on a 0-100 scale:
// 100 * 2 * LCS / (len(a) + len(b)), computed over runes.
// Two empty strings are identical and score 100.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	return ratioRunes(ra, rb)
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * 2 * float64(lcsLength(a, b)) / float64(total)
}

// PartialRatio returns the best Ratio between the shorter string and every
// equally long window of the longer one, so a name embedded in a longer
// listing title still scores high.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratioRunes(short, long[i:i+len(short)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares a and b after sorting their tokens, which makes
// the score independent of word order.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared token set against each side's
// remainder. One token set fully contained in the other scores 100.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		if len(setA) == len(setB) {
			return 100
		}
		return 0
	}

	var sect, diffAB, diffBA []string
	for tok := range setA {
		if setB[tok] {
			sect = append(sect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			diffBA = append(diffBA, tok)
		}
	}
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}
	slices.Sort(sect)
	slices.Sort(diffAB)
	slices.Sort(diffBA)

	base := strings.Join(sect, " ")
	withAB := strings.TrimSpace(base + " " + strings.Join(diffAB, " "))
	withBA := strings.TrimSpace(base + " " + strings.Join(diffBA, " "))

	best := Ratio(withAB, withBA)
	if base != "" {
		best = max(best, Ratio(base, withAB), Ratio(base, withBA))
	}
	return best
}

// BestRatio is the maximum of Ratio, PartialRatio, TokenSortRatio and
// TokenSetRatio over Strict-normalized inputs.
func BestRatio(a, b string) float64 {
	a, b = Strict(a), Strict(b)
	best := Ratio(a, b)
	if best == 100 {
		return best
	}
	best = max(best, TokenSortRatio(a, b), TokenSetRatio(a, b))
	if best == 100 {
		return best
	}
	return max(best, PartialRatio(a, b))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// lcsLength returns the length of the longest common subsequence using a
// single rolling row.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
