package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/murmur/sentinel/internal/category"
)

// memStore is an in-memory ProfileStore with the same per-user
// serialization contract as the Postgres store.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]*RiskProfile
	updates  int
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[string]*RiskProfile)}
}

func (s *memStore) Update(_ context.Context, userID string, fn func(*RiskProfile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	p, ok := s.profiles[userID]
	if !ok {
		p = NewRiskProfile(userID)
		s.profiles[userID] = p
	}
	return fn(p)
}

func (s *memStore) Get(_ context.Context, userID string) (*RiskProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return NewRiskProfile(userID), nil
	}
	return p, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	escs []Escalation
	err  error
}

func (q *fakeQueue) EnqueueEscalation(_ context.Context, esc Escalation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.escs = append(q.escs, esc)
	return nil
}

func (q *fakeQueue) enqueued() []Escalation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Escalation(nil), q.escs...)
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestLedger(threshold int) (*Ledger, *memStore, *fakeQueue) {
	store := newMemStore()
	queue := &fakeQueue{}
	l := New(store, queue, Config{ReviewThreshold: threshold})
	l.now = func() time.Time { return testNow }
	return l, store, queue
}

func hit(cat category.Category, at time.Time) category.Hit {
	return category.Hit{Category: cat, OccurredAt: at}
}

// TestRecord_ImmediateEscalatesOnFirstHit verifies a single
// immediate-severity hit escalates at high priority with no accumulated
// history required.
func TestRecord_ImmediateEscalatesOnFirstHit(t *testing.T) {
	l, _, queue := newTestLedger(25)

	err := l.Record(context.Background(), "u1", []category.Hit{
		hit(category.ChildGrooming, testNow),
	})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	escs := queue.enqueued()
	if len(escs) != 1 {
		t.Fatalf("enqueued %d escalations, want 1", len(escs))
	}
	esc := escs[0]
	if esc.UserID != "u1" || esc.Category != category.ChildGrooming {
		t.Errorf("escalation = %+v, want u1/child_grooming", esc)
	}
	if esc.Priority != PriorityHigh {
		t.Errorf("escalation priority = %q, want high", esc.Priority)
	}
	if esc.OccurredAt != testNow.Unix() {
		t.Errorf("escalation occurred_at = %d, want %d", esc.OccurredAt, testNow.Unix())
	}

	p, err := l.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if !p.FlaggedForReview || p.ReviewPriority != PriorityHigh {
		t.Errorf("profile flagged=%v priority=%q, want flagged at high", p.FlaggedForReview, p.ReviewPriority)
	}
	if p.TotalFlags30d != 1 {
		t.Errorf("TotalFlags30d = %d, want 1", p.TotalFlags30d)
	}
	if !p.LastFlagAt.Equal(testNow) {
		t.Errorf("LastFlagAt = %v, want %v", p.LastFlagAt, testNow)
	}
}

// TestRecord_EscalationFailureAborts verifies the escalate-before-persist
// ordering: when the queue rejects the escalation, Record fails and the
// profile is untouched.
func TestRecord_EscalationFailureAborts(t *testing.T) {
	l, store, queue := newTestLedger(25)
	queue.err = errors.New("queue unavailable")

	err := l.Record(context.Background(), "u1", []category.Hit{
		hit(category.Terrorism, testNow),
	})
	if err == nil {
		t.Fatal("Record() succeeded with a failing escalation queue")
	}
	if store.updates != 0 {
		t.Errorf("profile updated %d times despite escalation failure", store.updates)
	}
}

// TestRecord_ThresholdFlagsNormal verifies standard categories accumulate
// silently until the 30-day total reaches the review threshold.
func TestRecord_ThresholdFlagsNormal(t *testing.T) {
	l, _, queue := newTestLedger(3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Record(ctx, "u1", []category.Hit{hit(category.Toxicity, testNow)}); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	p, _ := l.Snapshot(ctx, "u1")
	if p.FlaggedForReview {
		t.Fatalf("flagged at %d hits, threshold is 3", p.TotalFlags30d)
	}

	if err := l.Record(ctx, "u1", []category.Hit{hit(category.SpamAds, testNow)}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	p, _ = l.Snapshot(ctx, "u1")
	if !p.FlaggedForReview || p.ReviewPriority != PriorityNormal {
		t.Errorf("flagged=%v priority=%q, want flagged at normal", p.FlaggedForReview, p.ReviewPriority)
	}
	if len(queue.enqueued()) != 0 {
		t.Errorf("standard categories enqueued %d escalations, want none", len(queue.enqueued()))
	}
}

// TestRecord_ThresholdDisabled verifies a non-positive threshold never
// flags on volume while immediate escalation still works.
func TestRecord_ThresholdDisabled(t *testing.T) {
	l, _, _ := newTestLedger(0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := l.Record(ctx, "u1", []category.Hit{hit(category.Scam, testNow)}); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	p, _ := l.Snapshot(ctx, "u1")
	if p.FlaggedForReview {
		t.Error("flagged on volume with threshold disabled")
	}

	if err := l.Record(ctx, "u1", []category.Hit{hit(category.Terrorism, testNow)}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	p, _ = l.Snapshot(ctx, "u1")
	if !p.FlaggedForReview || p.ReviewPriority != PriorityHigh {
		t.Error("immediate hit did not flag with threshold disabled")
	}
}

// TestRecord_HighPriorityNeverDowngraded verifies later threshold crossings
// leave a high-priority flag in place, and that the flag itself latches.
func TestRecord_HighPriorityNeverDowngraded(t *testing.T) {
	l, _, _ := newTestLedger(2)
	ctx := context.Background()

	if err := l.Record(ctx, "u1", []category.Hit{hit(category.WeaponTrafficking, testNow)}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := l.Record(ctx, "u1", []category.Hit{hit(category.Toxicity, testNow)}); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	p, _ := l.Snapshot(ctx, "u1")
	if !p.FlaggedForReview {
		t.Fatal("flag did not latch")
	}
	if p.ReviewPriority != PriorityHigh {
		t.Errorf("priority = %q, want high preserved across threshold flags", p.ReviewPriority)
	}
}

// TestRecord_NormalUpgradesToHigh verifies an immediate hit raises an
// existing normal-priority flag.
func TestRecord_NormalUpgradesToHigh(t *testing.T) {
	l, _, _ := newTestLedger(1)
	ctx := context.Background()

	if err := l.Record(ctx, "u1", []category.Hit{hit(category.Harassment, testNow)}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if p, _ := l.Snapshot(ctx, "u1"); p.ReviewPriority != PriorityNormal {
		t.Fatalf("priority = %q, want normal", p.ReviewPriority)
	}

	if err := l.Record(ctx, "u1", []category.Hit{hit(category.ChildExploitation, testNow)}); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if p, _ := l.Snapshot(ctx, "u1"); p.ReviewPriority != PriorityHigh {
		t.Errorf("priority = %q, want upgraded to high", p.ReviewPriority)
	}
}

// TestRecord_EmptyHits verifies a no-hit record is a no-op.
func TestRecord_EmptyHits(t *testing.T) {
	l, store, queue := newTestLedger(25)

	if err := l.Record(context.Background(), "u1", nil); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if store.updates != 0 || len(queue.enqueued()) != 0 {
		t.Error("empty record touched the store or queue")
	}
}

// TestRecord_ExpiredHitsDoNotCount verifies the rolling window: old hits
// rehydrate but contribute nothing to the current total.
func TestRecord_ExpiredHitsDoNotCount(t *testing.T) {
	l, _, _ := newTestLedger(25)
	ctx := context.Background()

	old := testNow.Add(-31 * 24 * time.Hour)
	recent := testNow.Add(-time.Hour)
	err := l.Record(ctx, "u1", []category.Hit{
		hit(category.Toxicity, old),
		hit(category.Toxicity, recent),
	})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	p, _ := l.Snapshot(ctx, "u1")
	if p.TotalFlags30d != 1 {
		t.Errorf("TotalFlags30d = %d, want 1 (expired hit excluded)", p.TotalFlags30d)
	}
	// LastFlagAt reflects the newest hit, not the window.
	if !p.LastFlagAt.Equal(recent) {
		t.Errorf("LastFlagAt = %v, want %v", p.LastFlagAt, recent)
	}
}

// TestRecord_ConcurrentWritersLoseNothing verifies per-user serialization:
// fifty hits recorded from ten goroutines all land.
func TestRecord_ConcurrentWritersLoseNothing(t *testing.T) {
	l, _, _ := newTestLedger(0)
	ctx := context.Background()

	cats := []category.Category{
		category.Toxicity, category.Harassment, category.SpamAds,
		category.Scam, category.Hate,
	}

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				cat := cats[(g+i)%len(cats)]
				if err := l.Record(ctx, "u1", []category.Hit{hit(cat, testNow)}); err != nil {
					t.Errorf("Record() error: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	p, err := l.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if p.TotalFlags30d != 50 {
		t.Errorf("TotalFlags30d = %d, want 50", p.TotalFlags30d)
	}
}

// TestSnapshot_UnknownUser verifies unknown users read as empty profiles.
func TestSnapshot_UnknownUser(t *testing.T) {
	l, _, _ := newTestLedger(25)

	p, err := l.Snapshot(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if p.TotalFlags30d != 0 || p.FlaggedForReview || p.ReviewPriority != PriorityNone {
		t.Errorf("unknown user profile = %+v, want empty", p)
	}
}
