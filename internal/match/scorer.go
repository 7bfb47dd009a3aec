package match

import (
	"strings"
)

// Scorer computes a similarity in [0,1] between two normalized event names.
// Pluggable so the algorithm and threshold can be swapped independently of
// the matcher's control flow.
type Scorer interface {
	Similarity(a, b string) float64
}

// TokenScorer is the default scorer: Dice coefficient over token sets, with
// a containment shortcut for names that are prefixes/suffixes of each other
// ("CPI m/m" vs "Core CPI m/m" style truncations).
type TokenScorer struct{}

func (TokenScorer) Similarity(a, b string) float64 {
	a = NormalizeName(a)
	b = NormalizeName(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}

	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb))
}

// nameReplacer folds the source's formatting variants into one spelling.
var nameReplacer = strings.NewReplacer(
	"m/m", "mom",
	"y/y", "yoy",
	"q/q", "qoq",
	".", "",
	",", "",
	"(", "",
	")", "",
)

// NormalizeName lowercases, folds period notations (m/m, y/y, q/q) and
// strips punctuation so the same indicator scrapes to the same key.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nameReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}
