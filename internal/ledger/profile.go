package ledger

import (
	"time"

	"github.com/murmur/sentinel/internal/category"
)

// Priority is the review priority attached to a flagged profile. High is
// set by immediate-severity hits and is never downgraded by this pipeline.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// RiskProfile is the per-user safety state: one rolling counter per
// category plus the aggregate review fields. Counters are append-only per
// hit; FlaggedForReview transitions false->true only (an external review
// tool clears it, never this pipeline).
type RiskProfile struct {
	UserID           string
	Counters         map[category.Category]*RollingCounter
	TotalFlags30d    int
	LastFlagAt       time.Time // zero if the user was never flagged
	FlaggedForReview bool
	ReviewPriority   Priority
}

// NewRiskProfile returns an empty profile for the user.
func NewRiskProfile(userID string) *RiskProfile {
	return &RiskProfile{
		UserID:   userID,
		Counters: make(map[category.Category]*RollingCounter),
	}
}

// Counter returns the rolling counter for cat, creating it on first use.
func (p *RiskProfile) Counter(cat category.Category) *RollingCounter {
	c, ok := p.Counters[cat]
	if !ok {
		c = &RollingCounter{}
		p.Counters[cat] = c
	}
	return c
}

// Recompute refreshes TotalFlags30d as the sum of all categories' current
// window counts, pruning expired hits along the way.
func (p *RiskProfile) Recompute(now time.Time) {
	total := 0
	for _, c := range p.Counters {
		total += c.Count(now)
	}
	p.TotalFlags30d = total
}

// flag latches the review flag at the given priority. High is never
// replaced by Normal.
func (p *RiskProfile) flag(prio Priority) {
	p.FlaggedForReview = true
	if p.ReviewPriority != PriorityHigh {
		p.ReviewPriority = prio
	}
}
