// Package gate implements the send gate: the synchronous orchestration of
// the fast filter on the message-send path. A blocked message never
// reaches the transport; an allowed message is handed to the transport and
// queued for asynchronous classification, and the caller never waits on
// either background step.
package gate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/murmur/sentinel/internal/classify"
	"github.com/murmur/sentinel/internal/fastfilter"
	"github.com/murmur/sentinel/internal/metrics"
)

// Outcome is the result reported to the transport collaborator. The
// collaborator must not deliver a message until it sees OutcomeDelivered,
// and reflects OutcomeBlocked to the sender without a block reason.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeBlocked
)

func (o Outcome) String() string {
	if o == OutcomeBlocked {
		return "blocked"
	}
	return "delivered"
}

// Request is one outbound message to evaluate. It is ephemeral: owned by
// the call that submits it and never persisted past evaluation.
type Request struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	FirstMessage   bool   `json:"first_message"`
	Ts             int64  `json:"ts"` // unix seconds, submission time
}

// Response is the reply payload sent back to the transport collaborator.
type Response struct {
	Outcome string `json:"outcome"`
}

// ScoreStore mutates the sender's moderation score. Fast-filter outcomes
// are its only writer; deltas are always positive.
type ScoreStore interface {
	Increment(ctx context.Context, userID string, delta int) error
}

// Transport dispatches an allowed message for delivery. Delivery failures
// belong to the transport; the gate never retries them.
type Transport interface {
	Deliver(ctx context.Context, req Request) error
}

// ConversationRouter moves a conversation to the separate folder; invoked
// only on brand violations.
type ConversationRouter interface {
	MoveToSeparateFolder(ctx context.Context, conversationID string) error
}

// JobQueue schedules a classification job. Enqueueing must not block on
// classification; a failed enqueue is a missed classification, not a
// delivery failure.
type JobQueue interface {
	EnqueueClassification(ctx context.Context, job classify.Job) error
}

// Gate wires the fast filter to its collaborators.
type Gate struct {
	filter    *fastfilter.Filter
	scores    ScoreStore
	transport Transport
	router    ConversationRouter
	jobs      JobQueue
}

// New builds a gate.
func New(filter *fastfilter.Filter, scores ScoreStore, transport Transport, router ConversationRouter, jobs JobQueue) *Gate {
	return &Gate{
		filter:    filter,
		scores:    scores,
		transport: transport,
		router:    router,
		jobs:      jobs,
	}
}

// Submit evaluates the message and applies the verdict. The fast filter
// always completes; it gates a user-visible send and has no cancellation
// path. On a block: exactly one score increment, an optional folder move,
// and no transport or classifier involvement. On an allow: hand-off to the
// transport and exactly one classification job, neither awaited, and
// neither able to roll the delivery decision back.
func (g *Gate) Submit(ctx context.Context, req Request) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return OutcomeBlocked, fmt.Errorf("gate: invalid request: %w", err)
	}

	start := time.Now()
	verdict := g.filter.Evaluate(req.Text, req.FirstMessage)
	metrics.FilterLatency.Observe(time.Since(start).Seconds())
	metrics.VerdictsTotal.WithLabelValues(verdict.Decision.String()).Inc()

	if verdict.Decision.Blocked() {
		if err := g.scores.Increment(ctx, req.UserID, verdict.ScoreDelta); err != nil {
			// The block stands; the score catches up on the next offense.
			log.Printf("[gate] score increment user=%s delta=%d failed: %v",
				req.UserID, verdict.ScoreDelta, err)
		}
		if verdict.RouteToSeparateFolder {
			if err := g.router.MoveToSeparateFolder(ctx, req.ConversationID); err != nil {
				log.Printf("[gate] folder route conversation=%s failed: %v",
					req.ConversationID, err)
			}
		}
		log.Printf("[gate] BLOCKED user=%s conversation=%s decision=%s",
			req.UserID, req.ConversationID, verdict.Decision)
		return OutcomeBlocked, nil
	}

	if err := g.transport.Deliver(ctx, req); err != nil {
		// Transport owns its failures; the verdict and outcome stand.
		log.Printf("[gate] transport dispatch conversation=%s failed: %v",
			req.ConversationID, err)
	}

	job := classify.Job{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Text:           req.Text,
		Ts:             req.Ts,
	}
	if err := g.jobs.EnqueueClassification(ctx, job); err != nil {
		// Missed classification is an accepted risk, never a send failure.
		log.Printf("[gate] classification enqueue job=%s user=%s failed: %v",
			job.ID, req.UserID, err)
	}

	return OutcomeDelivered, nil
}
