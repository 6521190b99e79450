// Package categorization assigns merchants and categories to transaction
// descriptions using exact multi-pattern matching with a fuzzy fallback for
// mangled statement text.
package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a resolved merchant and category for a description.
type Match struct {
	Merchant string
	Category string
}

// pattern maps one merchant keyword (as it appears in statement text) to its
// display name and category.
type pattern struct {
	keyword  string
	merchant string
	category string
}

// nzPatterns covers the merchants that dominate NZ bank statements. Keywords
// are matched case-insensitively as substrings.
var nzPatterns = []pattern{
	{"countdown", "Countdown", "groceries"},
	{"woolworths", "Woolworths", "groceries"},
	{"new world", "New World", "groceries"},
	{"pak n save", "Pak'nSave", "groceries"},
	{"paknsave", "Pak'nSave", "groceries"},
	{"four square", "Four Square", "groceries"},
	{"fresh choice", "FreshChoice", "groceries"},
	{"z energy", "Z Energy", "fuel"},
	{"bp connect", "BP", "fuel"},
	{"mobil", "Mobil", "fuel"},
	{"caltex", "Caltex", "fuel"},
	{"gull", "Gull", "fuel"},
	{"at hop", "Auckland Transport", "transport"},
	{"metlink", "Metlink", "transport"},
	{"uber", "Uber", "transport"},
	{"air new zealand", "Air New Zealand", "travel"},
	{"jetstar", "Jetstar", "travel"},
	{"mcdonalds", "McDonald's", "eating_out"},
	{"burger king", "Burger King", "eating_out"},
	{"kfc", "KFC", "eating_out"},
	{"subway", "Subway", "eating_out"},
	{"hell pizza", "Hell Pizza", "eating_out"},
	{"spark", "Spark", "utilities"},
	{"vodafone", "One NZ", "utilities"},
	{"one nz", "One NZ", "utilities"},
	{"2degrees", "2degrees", "utilities"},
	{"contact energy", "Contact Energy", "utilities"},
	{"genesis energy", "Genesis Energy", "utilities"},
	{"mercury", "Mercury", "utilities"},
	{"meridian", "Meridian", "utilities"},
	{"watercare", "Watercare", "utilities"},
	{"netflix", "Netflix", "subscriptions"},
	{"spotify", "Spotify", "subscriptions"},
	{"disney plus", "Disney+", "subscriptions"},
	{"neon", "Neon", "subscriptions"},
	{"sky nz", "Sky", "subscriptions"},
	{"the warehouse", "The Warehouse", "shopping"},
	{"kmart", "Kmart", "shopping"},
	{"briscoes", "Briscoes", "shopping"},
	{"mitre 10", "Mitre 10", "home"},
	{"bunnings", "Bunnings", "home"},
	{"chemist warehouse", "Chemist Warehouse", "health"},
	{"unichem", "Unichem", "health"},
	{"southern cross", "Southern Cross", "health"},
	{"les mills", "Les Mills", "health"},
	{"ird", "Inland Revenue", "tax"},
	{"salary", "Employer", "income"},
	{"wages", "Employer", "income"},
}

// fuzzyMaxDistance bounds the Levenshtein distance accepted by the fallback.
const fuzzyMaxDistance = 1

// Engine matches descriptions against the merchant patterns. The exact pass
// uses Aho-Corasick over all keywords at once; the fuzzy pass rescues
// near-misses from truncated or misspelled statement lines.
type Engine struct {
	matcher  *ahocorasick.Matcher
	patterns []pattern
}

// NewEngine builds the matcher from the built-in NZ pattern set.
func NewEngine() *Engine {
	keywords := make([]string, len(nzPatterns))
	for i, p := range nzPatterns {
		keywords[i] = p.keyword
	}
	return &Engine{
		matcher:  ahocorasick.NewStringMatcher(keywords),
		patterns: nzPatterns,
	}
}

// Categorize resolves a description to a merchant and category. The longest
// exact keyword hit wins; if nothing matches exactly, a fuzzy pass over the
// description words runs with a tight distance bound.
func (e *Engine) Categorize(description string) (Match, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return Match{}, false
	}

	hits := e.matcher.Match([]byte(desc))
	if len(hits) > 0 {
		best := hits[0]
		for _, h := range hits[1:] {
			if len(e.patterns[h].keyword) > len(e.patterns[best].keyword) {
				best = h
			}
		}
		p := e.patterns[best]
		return Match{Merchant: p.merchant, Category: p.category}, true
	}

	return e.fuzzyMatch(desc)
}

// fuzzyMatch compares each single-word keyword against each description
// word. Multi-word keywords are exact-only: fuzzy matching fragments of them
// produces too many false positives.
func (e *Engine) fuzzyMatch(desc string) (Match, bool) {
	words := strings.Fields(desc)
	for _, p := range e.patterns {
		if strings.ContainsRune(p.keyword, ' ') {
			continue
		}
		for _, word := range words {
			if len(word) < 4 {
				continue
			}
			// Truncated statement text drops letters, so check the word
			// against the keyword as well as the other way around.
			rank := fuzzy.RankMatchNormalizedFold(word, p.keyword)
			if rank < 0 {
				rank = fuzzy.RankMatchNormalizedFold(p.keyword, word)
			}
			if rank >= 0 && rank <= fuzzyMaxDistance {
				return Match{Merchant: p.merchant, Category: p.category}, true
			}
		}
	}
	return Match{}, false
}
