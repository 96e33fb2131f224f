package classify

import (
	"context"

	"github.com/murmur/sentinel/internal/category"
)

// DefaultSentimentThreshold is the negative-affect score at which a
// message counts as toxic.
const DefaultSentimentThreshold = 2.0

// negativeWeights scores negative-affect vocabulary. Weights are summed
// over the message's tokens; stronger insults weigh more.
var negativeWeights = map[string]float64{
	"hate": 1, "hateful": 1, "stupid": 1, "dumb": 1, "trash": 1,
	"garbage": 1, "ugly": 1, "gross": 1, "disgusting": 1.5, "awful": 0.5,
	"terrible": 0.5, "horrible": 0.5, "sucks": 0.5, "suck": 0.5,
	"idiot": 1.5, "idiots": 1.5, "moron": 1.5, "morons": 1.5,
	"loser": 1.5, "losers": 1.5, "pathetic": 1.5, "worthless": 2,
	"useless": 1.5, "failure": 1.5, "freak": 1.5, "annoying": 0.5,
}

// insultNouns is the subset of negative vocabulary that reads as a
// personal insult; two or more aimed at the reader is bullying.
var insultNouns = toSet([]string{
	"idiot", "idiots", "moron", "morons", "loser", "losers", "pathetic",
	"worthless", "useless", "stupid", "dumb", "ugly", "freak", "failure",
})

// secondPerson marks tokens that aim the message at the reader.
var secondPerson = toSet([]string{"you", "your", "you're", "youre", "u", "ur", "yourself"})

// SentimentDetector scores negative affect. Above the threshold the
// message is toxic; aimed at the reader it is also harassment; repeated
// personal insults aimed at the reader are bullying. The context analyzer
// boosts the score for shouting, aggressive punctuation, and velocity
// anomalies. The boost widens the net; it never adds categories on its own.
type SentimentDetector struct {
	analyzer  *ContextAnalyzer
	threshold float64
}

// NewSentimentDetector builds the detector with the default threshold.
// analyzer may be nil.
func NewSentimentDetector(analyzer *ContextAnalyzer) *SentimentDetector {
	return &SentimentDetector{analyzer: analyzer, threshold: DefaultSentimentThreshold}
}

func (d *SentimentDetector) Name() string { return "sentiment" }

func (d *SentimentDetector) Detect(ctx context.Context, msg Message) ([]category.Category, error) {
	tokens := tokenize(msg.Text)

	score := 0.0
	targeted := false
	insults := 0
	for _, tok := range tokens {
		score += negativeWeights[tok]
		if secondPerson[tok] {
			targeted = true
		}
		if insultNouns[tok] {
			insults++
		}
	}

	score *= 1 + d.analyzer.Boost(ctx, msg)

	var cats []category.Category
	if score >= d.threshold {
		cats = append(cats, category.Toxicity)
		if targeted {
			cats = append(cats, category.Harassment)
		}
	}
	if targeted && insults >= 2 {
		cats = append(cats, category.Bullying)
	}
	return cats, nil
}
