package classify

import (
	"context"

	"github.com/murmur/sentinel/internal/category"
)

// DefaultAdultStrictness is the number of explicit terms that must appear
// before a message is flagged. Deployments that want a stricter policy
// set it to 1.
const DefaultAdultStrictness = 2

// explicitTerms is the explicit-content lexicon seed set.
var explicitTerms = toSet([]string{
	"nude", "nudes", "naked", "sex", "sexual", "horny", "orgasm", "porn",
	"blowjob", "handjob", "cock", "pussy", "tits", "cum", "sexting",
	"strip", "fetish", "kink", "bdsm",
})

// AdultDetector flags explicit sexual content once the number of explicit
// terms reaches the configured strictness threshold.
type AdultDetector struct {
	strictness int
}

// NewAdultDetector builds the detector; strictness below 1 is clamped to 1.
func NewAdultDetector(strictness int) *AdultDetector {
	if strictness < 1 {
		strictness = 1
	}
	return &AdultDetector{strictness: strictness}
}

func (d *AdultDetector) Name() string { return "adult" }

func (d *AdultDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	if countTokenMatches(tokenize(msg.Text), explicitTerms) >= d.strictness {
		return []category.Category{category.AdultContent}, nil
	}
	return nil, nil
}
