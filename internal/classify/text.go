package classify

import (
	"strings"
	"unicode"
)

// tokenize splits text into lowercase word tokens. Used by the lexicon
// detectors; punctuation never hides or creates a token.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// containsAnyPhrase reports whether any of the lowercase phrases appears
// as a substring of the lowercased text, returning the first match.
func containsAnyPhrase(text string, phrases []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// countTokenMatches returns how many tokens appear in the given set.
func countTokenMatches(tokens []string, set map[string]bool) int {
	n := 0
	for _, tok := range tokens {
		if set[tok] {
			n++
		}
	}
	return n
}

// toSet builds a lookup set from a term list.
func toSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = true
	}
	return set
}
