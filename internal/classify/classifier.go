// Package classify implements the asynchronous signal classifier: a fixed
// list of independent detectors that map message text to zero or more
// safety categories. Classification runs off the send path, never blocks
// delivery, and a failing detector degrades to zero hits instead of
// failing the job.
package classify

import (
	"context"
	"log"
	"time"

	"github.com/murmur/sentinel/internal/category"
	"github.com/murmur/sentinel/internal/metrics"
)

// Message is one classification input. Only the text is scored; the
// conversation ID keys the velocity signal consumed by the context
// analyzer. Neither field is ever persisted by this package.
type Message struct {
	ConversationID string
	Text           string
}

// Detector maps a message to zero or more categories. Detectors are
// independent and order-insensitive; new signals are added by appending a
// detector to the classifier's list, never by branching on type. A
// detector must be safe for concurrent use.
type Detector interface {
	Name() string
	Detect(ctx context.Context, msg Message) ([]category.Category, error)
}

// Classifier runs every detector and unions the results into at most one
// hit per category.
type Classifier struct {
	detectors []Detector
	now       func() time.Time
}

// New builds a classifier over the given detector list.
func New(detectors ...Detector) *Classifier {
	return &Classifier{detectors: detectors, now: time.Now}
}

// DefaultDetectors returns the standard detector list. The context
// analyzer feeds the sentiment detector's confidence; it is not a
// standalone detector.
func DefaultDetectors(analyzer *ContextAnalyzer) []Detector {
	return []Detector{
		NewSentimentDetector(analyzer),
		NewPatternDetector(),
		NewAdultDetector(DefaultAdultStrictness),
		NewScamDetector(),
		NewPrivacyDetector(),
		NewSelfHarmDetector(),
		NewExtremismDetector(),
		NewChildSafetyDetector(),
		NewSecurityDetector(),
	}
}

// Classify runs all detectors against the message and returns the union of
// their category hits, one hit per category stamped with the current time.
// Detector errors are contained: they are logged, counted, and contribute
// zero hits. Classification never short-circuits on a match, but it stops
// early once ctx is done so a timed-out job does not burn the pool.
func (c *Classifier) Classify(ctx context.Context, msg Message) []category.Hit {
	seen := make(map[category.Category]bool)
	var hits []category.Hit
	now := c.now()

	for _, d := range c.detectors {
		if ctx.Err() != nil {
			return hits
		}

		cats, err := d.Detect(ctx, msg)
		if err != nil {
			// A single broken detector is not fatal to the job.
			metrics.DetectorFailures.WithLabelValues(d.Name()).Inc()
			log.Printf("[classify] detector %s failed: %v (degrading to no hits)", d.Name(), err)
			continue
		}

		for _, cat := range cats {
			if seen[cat] {
				continue
			}
			seen[cat] = true
			hits = append(hits, category.Hit{Category: cat, OccurredAt: now})
		}
	}

	return hits
}
