package classify

import (
	"context"
	"regexp"

	"github.com/murmur/sentinel/internal/category"
)

// All four child-safety categories are immediate severity: a single hit
// forces escalation regardless of the user's accumulated count.

var (
	// minorAgePattern matches first-person age disclosure of a minor
	// ("i'm 13", "i am 12 years old").
	minorAgePattern = regexp.MustCompile(`(?i)\b(i'?m|i\s+am)\s+(1[0-7]|[6-9])\b`)

	// minorReferencePattern matches third-person references to minors.
	minorReferencePattern = regexp.MustCompile(`(?i)\b(little|young|underage)\s+(girl|boy|girls|boys|kid|kids)\b|\bminors?\b`)

	// meetUpPattern matches in-person meeting solicitation.
	meetUpPattern = regexp.MustCompile(`(?i)\b(meet\s+(me|up)|come\s+(to\s+my|over)|i('ll|\s+will)\s+pick\s+you\s+up|sneak\s+out)\b`)
)

// groomingPhrases is classic grooming-pattern language.
var groomingPhrases = []string{
	"don't tell your parents", "dont tell your parents", "our little secret",
	"keep this between us", "this is our secret", "are your parents home",
	"you're so mature for your age", "you seem older than your age",
	"delete this chat", "how old are you really",
}

// sexualContextTerms marks sexualized context for the age-based rules.
var sexualContextTerms = toSet([]string{
	"nude", "nudes", "naked", "sexy", "sexual", "sex", "pics", "pictures",
	"body", "touch", "undress",
})

// ChildSafetyDetector maps grooming language, age-disclosure plus
// sexualized content, and minors-in-inappropriate-context phrasing to the
// child-safety category group.
type ChildSafetyDetector struct{}

func NewChildSafetyDetector() *ChildSafetyDetector { return &ChildSafetyDetector{} }

func (d *ChildSafetyDetector) Name() string { return "child_safety" }

func (d *ChildSafetyDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	text := msg.Text
	tokens := tokenize(text)
	sexualized := countTokenMatches(tokens, sexualContextTerms) > 0
	_, grooming := containsAnyPhrase(text, groomingPhrases)
	minorAge := minorAgePattern.MatchString(text)
	minorRef := minorReferencePattern.MatchString(text)
	meetUp := meetUpPattern.MatchString(text)

	var cats []category.Category
	if grooming {
		cats = append(cats, category.ChildGrooming)
	}
	if minorAge && sexualized {
		cats = append(cats, category.UnderageContent)
	}
	if minorRef && sexualized {
		cats = append(cats, category.ChildExploitation)
	}
	if meetUp && (grooming || minorAge || minorRef) {
		cats = append(cats, category.ChildEndangerment)
	}
	return cats, nil
}
