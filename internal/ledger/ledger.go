package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/murmur/sentinel/internal/category"
	"github.com/murmur/sentinel/internal/metrics"
)

// ErrWriteConflict is returned by profile stores when concurrent updates to
// the same user could not be reconciled after retries.
var ErrWriteConflict = errors.New("ledger: profile write conflict")

// Escalation is the record published to the review queue for every
// immediate-severity hit. Delivery is at-least-once; the review side
// deduplicates on (user, category, occurred_at).
type Escalation struct {
	UserID     string            `json:"user_id"`
	Category   category.Category `json:"category"`
	OccurredAt int64             `json:"occurred_at"` // unix seconds
	Priority   Priority          `json:"priority"`
}

// EscalationQueue hands escalations to the human-review collaborator.
type EscalationQueue interface {
	EnqueueEscalation(ctx context.Context, esc Escalation) error
}

// ProfileStore persists risk profiles. Update must apply fn atomically per
// user: concurrent updates for the same user must serialize, and fn may be
// re-invoked on a fresh profile after a write conflict.
type ProfileStore interface {
	Update(ctx context.Context, userID string, fn func(*RiskProfile) error) error
	Get(ctx context.Context, userID string) (*RiskProfile, error)
}

// Config holds the operator-tunable ledger parameters.
type Config struct {
	// ReviewThreshold is the 30-day flag total at which a user is flagged
	// for standard review. Zero or negative disables threshold flagging;
	// immediate-severity escalation is unaffected.
	ReviewThreshold int
}

// Ledger applies category hits to per-user risk profiles and publishes
// escalations for immediate-severity categories.
type Ledger struct {
	profiles ProfileStore
	queue    EscalationQueue
	cfg      Config
	now      func() time.Time
}

// New returns a ledger writing through store and escalating via queue.
func New(store ProfileStore, queue EscalationQueue, cfg Config) *Ledger {
	return &Ledger{
		profiles: store,
		queue:    queue,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Record appends the hits to the user's rolling counters, refreshes the
// aggregate fields, and applies the flagging policy. Escalations for
// immediate-severity hits are enqueued before the profile write, so a
// caller that sees Record return has the guarantee that every required
// escalation was at least handed to the queue. Callers must not resubmit
// the same hits on success; counter appends are not idempotent.
func (l *Ledger) Record(ctx context.Context, userID string, hits []category.Hit) error {
	if len(hits) == 0 {
		return nil
	}

	immediateHit := false
	for _, h := range hits {
		if h.Category.Severity() != category.Immediate {
			continue
		}
		immediateHit = true
		esc := Escalation{
			UserID:     userID,
			Category:   h.Category,
			OccurredAt: h.OccurredAt.Unix(),
			Priority:   PriorityHigh,
		}
		if err := l.queue.EnqueueEscalation(ctx, esc); err != nil {
			return fmt.Errorf("ledger: enqueue escalation user=%s category=%s: %w",
				userID, h.Category, err)
		}
		metrics.EscalationsTotal.WithLabelValues(string(PriorityHigh)).Inc()
		log.Printf("[ledger] ESCALATED user=%s category=%s", userID, h.Category)
	}

	err := l.profiles.Update(ctx, userID, func(p *RiskProfile) error {
		now := l.now()
		for _, h := range hits {
			p.Counter(h.Category).Add(h.OccurredAt)
			if h.OccurredAt.After(p.LastFlagAt) {
				p.LastFlagAt = h.OccurredAt
			}
		}
		p.Recompute(now)

		if immediateHit {
			p.flag(PriorityHigh)
		} else if l.cfg.ReviewThreshold > 0 && p.TotalFlags30d >= l.cfg.ReviewThreshold {
			p.flag(PriorityNormal)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger: record user=%s: %w", userID, err)
	}

	for _, h := range hits {
		metrics.CategoryHits.WithLabelValues(string(h.Category)).Inc()
	}
	return nil
}

// Snapshot returns the user's current profile with counts evaluated
// against the current window. Unknown users get an empty profile.
func (l *Ledger) Snapshot(ctx context.Context, userID string) (*RiskProfile, error) {
	p, err := l.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger: snapshot user=%s: %w", userID, err)
	}
	p.Recompute(l.now())
	return p, nil
}
