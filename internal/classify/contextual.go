package classify

import (
	"context"
	"strings"
	"unicode"
)

// Default context-analyzer tuning.
const (
	capsRatioLimit      = 0.7 // share of uppercase letters considered shouting
	capsMinLetters      = 10  // ignore short messages like "OK"
	punctRunLimit       = 3   // "!!!" and beyond reads as aggression
	signalBoost         = 0.25
	DefaultVelocityLimit = 12 // messages per window before velocity is anomalous
)

// VelocityTracker reports how many messages a conversation has produced in
// the current tracking window. Implementations fail open to zero.
type VelocityTracker interface {
	Observe(ctx context.Context, conversationID string) int
}

// ContextAnalyzer derives confidence signals from how a message is written
// rather than what it says: shouting-caps ratio, aggressive punctuation
// runs, and conversation velocity anomalies. It contributes a confidence
// boost to the sentiment detector and is not a standalone detector.
type ContextAnalyzer struct {
	velocity      VelocityTracker
	velocityLimit int
}

// NewContextAnalyzer builds an analyzer. tracker may be nil, in which case
// the velocity signal contributes nothing.
func NewContextAnalyzer(tracker VelocityTracker, velocityLimit int) *ContextAnalyzer {
	if velocityLimit <= 0 {
		velocityLimit = DefaultVelocityLimit
	}
	return &ContextAnalyzer{velocity: tracker, velocityLimit: velocityLimit}
}

// Boost returns the additive confidence boost for the message: 0.25 per
// active signal, up to 0.75.
func (a *ContextAnalyzer) Boost(ctx context.Context, msg Message) float64 {
	if a == nil {
		return 0
	}

	boost := 0.0
	if capsRatio(msg.Text) >= capsRatioLimit {
		boost += signalBoost
	}
	if maxPunctRun(msg.Text) >= punctRunLimit {
		boost += signalBoost
	}
	if a.velocity != nil && msg.ConversationID != "" {
		if a.velocity.Observe(ctx, msg.ConversationID) > a.velocityLimit {
			boost += signalBoost
		}
	}
	return boost
}

// capsRatio returns the share of letters that are uppercase, or 0 when the
// message has too few letters to read as shouting.
func capsRatio(text string) float64 {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < capsMinLetters {
		return 0
	}
	return float64(upper) / float64(letters)
}

// maxPunctRun returns the longest consecutive run of '!' or '?'.
func maxPunctRun(text string) int {
	longest, run := 0, 0
	for _, r := range text {
		if strings.ContainsRune("!?", r) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
