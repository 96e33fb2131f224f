package classify

import (
	"context"

	"github.com/murmur/sentinel/internal/category"
)

// selfHarmPhrases covers ideation and encouragement. Both directions land
// in the same category; the review queue sorts out intent.
var selfHarmPhrases = []string{
	"kill myself", "killing myself", "end my life", "end it all",
	"cut myself", "cutting myself", "hurt myself", "self harm", "self-harm",
	"no reason to live", "better off without me", "want to die",
	"don't want to be here anymore", "kill yourself",
	"you should end it",
}

// SelfHarmDetector flags self-harm ideation and encouragement.
type SelfHarmDetector struct{}

func NewSelfHarmDetector() *SelfHarmDetector { return &SelfHarmDetector{} }

func (d *SelfHarmDetector) Name() string { return "self_harm" }

func (d *SelfHarmDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	if _, ok := containsAnyPhrase(msg.Text, selfHarmPhrases); ok {
		return []category.Category{category.SelfHarm}, nil
	}
	// "kys" is token-matched so it doesn't fire inside ordinary words.
	for _, tok := range tokenize(msg.Text) {
		if tok == "kys" {
			return []category.Category{category.SelfHarm}, nil
		}
	}
	return nil, nil
}
