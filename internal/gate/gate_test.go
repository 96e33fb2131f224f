package gate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/murmur/sentinel/internal/classify"
	"github.com/murmur/sentinel/internal/fastfilter"
)

type fakeScores struct {
	calls  int
	userID string
	delta  int
	err    error
}

func (f *fakeScores) Increment(_ context.Context, userID string, delta int) error {
	f.calls++
	f.userID = userID
	f.delta = delta
	return f.err
}

type fakeTransport struct {
	calls int
	last  Request
	err   error
}

func (f *fakeTransport) Deliver(_ context.Context, req Request) error {
	f.calls++
	f.last = req
	return f.err
}

type fakeRouter struct {
	calls          int
	conversationID string
}

func (f *fakeRouter) MoveToSeparateFolder(_ context.Context, conversationID string) error {
	f.calls++
	f.conversationID = conversationID
	return nil
}

type fakeJobs struct {
	calls int
	last  classify.Job
	err   error
}

func (f *fakeJobs) EnqueueClassification(_ context.Context, job classify.Job) error {
	f.calls++
	f.last = job
	return f.err
}

type fixture struct {
	gate      *Gate
	scores    *fakeScores
	transport *fakeTransport
	router    *fakeRouter
	jobs      *fakeJobs
}

func newFixture() *fixture {
	f := &fixture{
		scores:    &fakeScores{},
		transport: &fakeTransport{},
		router:    &fakeRouter{},
		jobs:      &fakeJobs{},
	}
	f.gate = New(fastfilter.New(), f.scores, f.transport, f.router, f.jobs)
	return f
}

func request(text string, first bool) Request {
	return Request{
		UserID:         "user-1",
		ConversationID: "conv-1",
		Text:           text,
		FirstMessage:   first,
		Ts:             1700000000,
	}
}

// TestSubmit_BrandViolation verifies the full block path: score +101,
// folder route, no transport, no classification job.
func TestSubmit_BrandViolation(t *testing.T) {
	f := newFixture()

	outcome, err := f.gate.Submit(context.Background(), request("this is murmur support, verify now", false))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeBlocked {
		t.Fatalf("outcome = %v, want Blocked", outcome)
	}
	if f.scores.calls != 1 || f.scores.delta != 101 {
		t.Errorf("score calls=%d delta=%d, want exactly one +101", f.scores.calls, f.scores.delta)
	}
	if f.router.calls != 1 || f.router.conversationID != "conv-1" {
		t.Errorf("router calls=%d conversation=%q, want one call for conv-1", f.router.calls, f.router.conversationID)
	}
	if f.transport.calls != 0 {
		t.Errorf("transport called %d times for a blocked message", f.transport.calls)
	}
	if f.jobs.calls != 0 {
		t.Errorf("classification enqueued %d times for a blocked message", f.jobs.calls)
	}
}

// TestSubmit_FirstMessageProfanity verifies score +10 with no folder route
// and no ledger involvement (the fast filter and risk ledger stores are
// independent).
func TestSubmit_FirstMessageProfanity(t *testing.T) {
	f := newFixture()

	outcome, err := f.gate.Submit(context.Background(), request("fuck this", true))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeBlocked {
		t.Fatalf("outcome = %v, want Blocked", outcome)
	}
	if f.scores.calls != 1 || f.scores.delta != 10 {
		t.Errorf("score calls=%d delta=%d, want exactly one +10", f.scores.calls, f.scores.delta)
	}
	if f.router.calls != 0 {
		t.Errorf("router called %d times without a brand violation", f.router.calls)
	}
	if f.transport.calls != 0 || f.jobs.calls != 0 {
		t.Error("blocked message reached transport or classifier")
	}
}

// TestSubmit_Allow verifies delivery hand-off plus exactly one
// classification job, with no score mutation.
func TestSubmit_Allow(t *testing.T) {
	f := newFixture()
	req := request("this app sucks", true)

	outcome, err := f.gate.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeDelivered {
		t.Fatalf("outcome = %v, want Delivered", outcome)
	}
	if f.scores.calls != 0 {
		t.Errorf("score mutated %d times on allow", f.scores.calls)
	}
	if f.transport.calls != 1 {
		t.Fatalf("transport calls = %d, want 1", f.transport.calls)
	}
	if f.jobs.calls != 1 {
		t.Fatalf("classification jobs = %d, want 1", f.jobs.calls)
	}
	job := f.jobs.last
	if job.UserID != req.UserID || job.ConversationID != req.ConversationID || job.Text != req.Text {
		t.Errorf("job = %+v, want request fields carried over", job)
	}
	if job.ID == "" {
		t.Error("job ID is empty")
	}
}

// TestSubmit_ProfanityLaterMessage verifies the first-message-only gate
// end to end: the same profane text is delivered in an established
// conversation and still classified.
func TestSubmit_ProfanityLaterMessage(t *testing.T) {
	f := newFixture()

	outcome, err := f.gate.Submit(context.Background(), request("fuck this", false))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeDelivered {
		t.Fatalf("outcome = %v, want Delivered", outcome)
	}
	if f.scores.calls != 0 {
		t.Error("score mutated for an allowed message")
	}
	if f.jobs.calls != 1 {
		t.Errorf("classification jobs = %d, want 1", f.jobs.calls)
	}
}

// TestSubmit_TransportFailureDoesNotRollBack verifies a transport error
// never changes the outcome or suppresses classification.
func TestSubmit_TransportFailureDoesNotRollBack(t *testing.T) {
	f := newFixture()
	f.transport.err = errors.New("connection reset")

	outcome, err := f.gate.Submit(context.Background(), request("hello there", false))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeDelivered {
		t.Fatalf("outcome = %v, want Delivered despite transport failure", outcome)
	}
	if f.jobs.calls != 1 {
		t.Errorf("classification jobs = %d, want 1 despite transport failure", f.jobs.calls)
	}
}

// TestSubmit_ScoreFailureStillBlocks verifies a score-store error does not
// let a blocked message through.
func TestSubmit_ScoreFailureStillBlocks(t *testing.T) {
	f := newFixture()
	f.scores.err = errors.New("db down")

	outcome, err := f.gate.Submit(context.Background(), request("shit", true))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if outcome != OutcomeBlocked {
		t.Fatalf("outcome = %v, want Blocked despite score failure", outcome)
	}
	if f.transport.calls != 0 {
		t.Error("blocked message reached transport")
	}
}

// TestSubmit_InvalidRequests verifies malformed submissions are rejected
// before any evaluation or side effect.
func TestSubmit_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty text", request("", true)},
		{"missing user", Request{ConversationID: "c", Text: "hi"}},
		{"missing conversation", Request{UserID: "u", Text: "hi"}},
		{"oversized", request(strings.Repeat("a", MaxMessageBytes+1), false)},
		{"too many chars", request(strings.Repeat("é", MaxTextChars+1), false)},
		{"invalid utf8", request("hi\xff\xfe", false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			outcome, err := f.gate.Submit(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if outcome != OutcomeBlocked {
				t.Errorf("outcome = %v, want Blocked", outcome)
			}
			if f.scores.calls+f.transport.calls+f.router.calls+f.jobs.calls != 0 {
				t.Error("invalid request caused side effects")
			}
		})
	}
}
