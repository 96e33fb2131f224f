package fastfilter

import (
	"strings"
	"unicode"
)

// Lexicon holds the three disjoint rule sets consulted by the filter:
// general profanity terms, brand/app-name violation terms, and
// numeral-substituted profanity variants. Rule sets are read-only after
// Build and safe to share across goroutines without locking.
type Lexicon struct {
	// Version identifies the loaded rule set for operational logging.
	Version string

	general  map[string]bool // single-token profanity, lowercase
	variants map[string]bool // substituted spellings derived from general
	brand    []string        // lowercase phrases, substring matched
}

// defaultGeneralTerms is the built-in general profanity set. Deployments
// extend it via NewLexicon; this seed keeps the filter useful out of the box.
var defaultGeneralTerms = []string{
	"fuck", "fucking", "shit", "bitch", "asshole", "bastard", "dick",
	"cunt", "whore", "slut", "wanker", "prick",
}

// defaultBrandTerms are phrases that misuse the Murmur name to impersonate
// the platform. Brand violations are enforced on every message, not just
// the first one in a conversation.
var defaultBrandTerms = []string{
	"murmur support", "murmur admin", "murmur staff", "murmur moderator",
	"official murmur", "murmur team",
}

// substitutions maps the digit/symbol swaps commonly used to slip profanity
// past keyword filters back to their letter forms.
var substitutions = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
	'$': 's',
	'!': 'i',
}

// NewLexicon builds a lexicon from explicit rule sets. The variant set is
// derived at load time: every general term is expanded into its single-swap
// digit/symbol spellings ("shit" -> "sh1t", "5hit", ...), so substituted
// profanity is caught as a variant without appearing in the general set.
// Passing nil slices yields an empty rule set, which is how tests isolate
// one policy.
func NewLexicon(version string, general, brand []string) *Lexicon {
	lex := &Lexicon{
		Version:  version,
		general:  make(map[string]bool, len(general)),
		variants: make(map[string]bool),
	}
	for _, term := range general {
		term = strings.ToLower(term)
		lex.general[term] = true
		for _, v := range expandVariants(term) {
			lex.variants[v] = true
		}
	}
	for _, term := range brand {
		lex.brand = append(lex.brand, strings.ToLower(term))
	}
	return lex
}

// reverseSubs maps letters to the digit/symbol forms used to disguise them.
var reverseSubs = map[rune][]rune{
	'o': {'0'},
	'i': {'1', '!'},
	'e': {'3'},
	'a': {'4', '@'},
	's': {'5', '$'},
	't': {'7'},
	'b': {'8'},
}

// expandVariants produces every spelling of term with exactly one character
// substituted. Multi-swap spellings are still caught at match time by
// normalizing the token, so the expansion stays linear in term length.
func expandVariants(term string) []string {
	var out []string
	runes := []rune(term)
	for i, r := range runes {
		for _, sub := range reverseSubs[r] {
			v := make([]rune, len(runes))
			copy(v, runes)
			v[i] = sub
			out = append(out, string(v))
		}
	}
	return out
}

// DefaultLexicon returns the built-in rule sets.
func DefaultLexicon() *Lexicon {
	return NewLexicon("builtin-v1", defaultGeneralTerms, defaultBrandTerms)
}

// HasBrandViolation reports whether any brand violation phrase appears in
// the text. Phrases are matched as substrings of the lowercased text so
// multi-word terms work regardless of surrounding punctuation.
func (lex *Lexicon) HasBrandViolation(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range lex.brand {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// HasProfanity reports whether the text contains a general profanity term
// or a numeral-substituted variant of one. Tokens are split on anything
// that is not a letter, digit, or substitution symbol, so punctuation
// never hides a match and "class" never matches "ass".
func (lex *Lexicon) HasProfanity(text string) (plain bool, variant bool) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		_, sub := substitutions[r]
		return !sub
	})

	for _, tok := range tokens {
		if lex.general[tok] {
			plain = true
			continue
		}
		norm := normalizeToken(tok)
		if norm != tok && lex.general[norm] {
			variant = true
		}
		if lex.variants[tok] {
			variant = true
		}
	}
	return plain, variant
}

// normalizeToken maps substituted digits and symbols back to letters.
func normalizeToken(tok string) string {
	var b strings.Builder
	b.Grow(len(tok))
	for _, r := range tok {
		if sub, ok := substitutions[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
