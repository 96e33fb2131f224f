// Package ledger implements the per-user risk ledger: rolling 30-day
// category counters, review flagging, escalation publication, and the
// durable persisted profile document. It is the only writer of safety
// state; the fast filter's moderation score lives in the same document but
// is owned by the score package.
package ledger

import (
	"sort"
	"time"
)

// Window is the trailing period over which category hits are counted.
const Window = 30 * 24 * time.Hour

// RollingCounter counts hits inside the trailing window for one category.
// It stores pruned hit timestamps, so memory is bounded by the number of
// in-window hits and Count is always exact: a hit 31 days old contributes
// nothing, a hit 29 days old contributes one.
//
// RollingCounter is not safe for concurrent use; the profile store
// serializes access per user.
type RollingCounter struct {
	stamps []time.Time
}

// NewRollingCounter returns a counter pre-loaded with the given hit
// timestamps, as when rehydrating a profile from storage.
func NewRollingCounter(stamps []time.Time) *RollingCounter {
	c := &RollingCounter{stamps: append([]time.Time(nil), stamps...)}
	sort.Slice(c.stamps, func(i, j int) bool { return c.stamps[i].Before(c.stamps[j]) })
	return c
}

// Add records a hit. Hits are append-only; nothing removes one except
// window expiry.
func (c *RollingCounter) Add(t time.Time) {
	c.stamps = append(c.stamps, t)
}

// Count prunes expired hits and returns the number of hits whose timestamp
// falls within [now-Window, now].
func (c *RollingCounter) Count(now time.Time) int {
	c.Prune(now)
	n := 0
	for _, t := range c.stamps {
		if !t.After(now) {
			n++
		}
	}
	return n
}

// Prune drops hits older than the window. Kept separate from Count so a
// periodic sweep can reclaim memory without reading counts.
func (c *RollingCounter) Prune(now time.Time) {
	cutoff := now.Add(-Window)
	kept := c.stamps[:0]
	for _, t := range c.stamps {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	c.stamps = kept
}

// Timestamps returns a copy of the retained hit timestamps, oldest first.
func (c *RollingCounter) Timestamps() []time.Time {
	out := append([]time.Time(nil), c.stamps...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
