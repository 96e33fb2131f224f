package classify

import (
	"context"

	"github.com/murmur/sentinel/internal/category"
)

// extremismPhrases covers radicalization and recruitment language that
// stops short of the terrorism/security group handled by the security
// detector.
var extremismPhrases = []string{
	"join our movement", "join the brotherhood", "the cause needs you",
	"racial holy war", "great replacement", "day of the rope",
	"accelerate the collapse", "race war", "ethnostate",
	"wake up to the truth they hide", "radicalize",
}

// ExtremismDetector flags radicalization/recruitment language.
type ExtremismDetector struct{}

func NewExtremismDetector() *ExtremismDetector { return &ExtremismDetector{} }

func (d *ExtremismDetector) Name() string { return "extremism" }

func (d *ExtremismDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	if _, ok := containsAnyPhrase(msg.Text, extremismPhrases); ok {
		return []category.Category{category.Extremism}, nil
	}
	return nil, nil
}
