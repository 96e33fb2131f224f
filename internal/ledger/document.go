package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/murmur/sentinel/internal/category"
)

// Persisted safety sub-document layout (per user, inside the moderation
// document's "safety" key):
//
//	<category>_hits_30d:   int        current window count
//	<category>_timestamps: [int64]    retained hit times, unix seconds
//	total_flags_30d:       int
//	last_flag_at:          int64      unix seconds, omitted if never flagged
//	flagged_for_review:    bool
//	review_priority:       string     omitted when empty
//
// The layout is stable across restarts; a RiskProfile rehydrates entirely
// from it. Only counts and timestamps are stored, never message text.

const (
	fieldTotalFlags     = "total_flags_30d"
	fieldLastFlagAt     = "last_flag_at"
	fieldFlagged        = "flagged_for_review"
	fieldReviewPriority = "review_priority"

	hitsSuffix       = "_hits_30d"
	timestampsSuffix = "_timestamps"
)

// encodeSafety serializes the profile's safety state, pruning counters to
// the current window first so the document never grows without bound.
func encodeSafety(p *RiskProfile, now time.Time) ([]byte, error) {
	doc := make(map[string]interface{}, len(p.Counters)*2+4)

	for cat, counter := range p.Counters {
		n := counter.Count(now)
		if n == 0 {
			continue // fully expired categories drop out of the document
		}
		stamps := counter.Timestamps()
		unix := make([]int64, len(stamps))
		for i, t := range stamps {
			unix[i] = t.Unix()
		}
		doc[string(cat)+hitsSuffix] = n
		doc[string(cat)+timestampsSuffix] = unix
	}

	doc[fieldTotalFlags] = p.TotalFlags30d
	doc[fieldFlagged] = p.FlaggedForReview
	if !p.LastFlagAt.IsZero() {
		doc[fieldLastFlagAt] = p.LastFlagAt.Unix()
	}
	if p.ReviewPriority != PriorityNone {
		doc[fieldReviewPriority] = string(p.ReviewPriority)
	}

	return json.Marshal(doc)
}

// decodeSafety rehydrates a RiskProfile from a safety sub-document. An
// empty or missing document yields a fresh profile.
func decodeSafety(userID string, raw []byte) (*RiskProfile, error) {
	p := NewRiskProfile(userID)
	if len(raw) == 0 {
		return p, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ledger: decode safety doc for %s: %w", userID, err)
	}

	for _, cat := range category.All() {
		rawStamps, ok := doc[string(cat)+timestampsSuffix]
		if !ok {
			continue
		}
		var unix []int64
		if err := json.Unmarshal(rawStamps, &unix); err != nil {
			return nil, fmt.Errorf("ledger: decode %s timestamps for %s: %w", cat, userID, err)
		}
		stamps := make([]time.Time, len(unix))
		for i, s := range unix {
			stamps[i] = time.Unix(s, 0).UTC()
		}
		p.Counters[cat] = NewRollingCounter(stamps)
	}

	if raw, ok := doc[fieldTotalFlags]; ok {
		if err := json.Unmarshal(raw, &p.TotalFlags30d); err != nil {
			return nil, fmt.Errorf("ledger: decode total flags for %s: %w", userID, err)
		}
	}
	if raw, ok := doc[fieldFlagged]; ok {
		if err := json.Unmarshal(raw, &p.FlaggedForReview); err != nil {
			return nil, fmt.Errorf("ledger: decode review flag for %s: %w", userID, err)
		}
	}
	if raw, ok := doc[fieldLastFlagAt]; ok {
		var unix int64
		if err := json.Unmarshal(raw, &unix); err != nil {
			return nil, fmt.Errorf("ledger: decode last flag time for %s: %w", userID, err)
		}
		p.LastFlagAt = time.Unix(unix, 0).UTC()
	}
	if raw, ok := doc[fieldReviewPriority]; ok {
		var prio string
		if err := json.Unmarshal(raw, &prio); err != nil {
			return nil, fmt.Errorf("ledger: decode review priority for %s: %w", userID, err)
		}
		p.ReviewPriority = Priority(prio)
	}

	return p, nil
}
