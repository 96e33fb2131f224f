package classify

import (
	"context"
	"regexp"

	"github.com/murmur/sentinel/internal/category"
)

// Compiled once at package init; safe for concurrent use.
var (
	// threatPattern matches explicit first-person threat phrasing aimed at
	// the reader ("i will kill you", "i'm gonna hurt you", "you're dead").
	threatPattern = regexp.MustCompile(`(?i)\b(i\s*('ll|'m|\s+will|\s+am)?\s*(gonna|going\s+to)?\s*(kill|hurt|beat|stab|shoot|strangle)\s+(you|u|your)|you('re|\s+are)\s+(so\s+)?dead|watch\s+your\s+back)\b`)

	// dehumanizingPattern matches hate phrasing that targets a group.
	dehumanizingPattern = regexp.MustCompile(`(?i)\b(go\s+back\s+to\s+your\s+country|your\s+kind\s+(doesn't|does\s+not|don't)\s+belong|all\s+of\s+(you|them)\s+are\s+(vermin|subhuman|animals))\b`)
)

// hateTerms is dehumanizing vocabulary; slur lists are deployment
// configuration layered on top of this seed set.
var hateTerms = []string{
	"subhuman", "vermin", "untermensch", "race traitor", "racial purity",
}

// graphicTerms is graphic-violence vocabulary.
var graphicTerms = []string{
	"decapitat", "disembowel", "mutilat", "dismember", "gore everywhere",
	"blood everywhere", "torture them slowly", "skinned alive",
}

// PatternDetector runs the regex/lexicon rules for hate speech, explicit
// violent threats, and graphic-violence vocabulary.
type PatternDetector struct{}

func NewPatternDetector() *PatternDetector { return &PatternDetector{} }

func (d *PatternDetector) Name() string { return "pattern" }

func (d *PatternDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	var cats []category.Category

	if _, ok := containsAnyPhrase(msg.Text, hateTerms); ok || dehumanizingPattern.MatchString(msg.Text) {
		cats = append(cats, category.Hate)
	}
	if threatPattern.MatchString(msg.Text) {
		cats = append(cats, category.ViolentThreat)
	}
	if _, ok := containsAnyPhrase(msg.Text, graphicTerms); ok {
		cats = append(cats, category.GraphicContent)
	}
	return cats, nil
}
