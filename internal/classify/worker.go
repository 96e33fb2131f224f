package classify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/murmur/sentinel/internal/category"
	"github.com/murmur/sentinel/internal/metrics"
)

// Job is the classification work item carried on the job queue. The raw
// text lives only in this payload and in worker memory; it is never
// written to durable storage.
type Job struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	Ts             int64  `json:"ts"` // unix seconds, submission time
}

// Recorder is the risk-ledger write surface the pool depends on.
type Recorder interface {
	Record(ctx context.Context, userID string, hits []category.Hit) error
}

// PoolConfig tunes the worker pool.
type PoolConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// DefaultPoolConfig returns the standard tuning.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:    4,
		QueueSize:  256,
		JobTimeout: 5 * time.Second,
	}
}

// Pool runs classification jobs on a fixed set of workers. Submission is
// fire-and-forget and never blocks the caller: a full queue drops the job,
// and a submission after Stop is dropped rather than panicking, since queue
// subscription callbacks can still fire while the connection drains.
// Each job carries its own timeout; a timed-out job records nothing, since
// a missed safety signal is preferable to unbounded backlog growth.
type Pool struct {
	classifier *Classifier
	recorder   Recorder
	cfg        PoolConfig
	jobs       chan Job
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool builds a pool; zero config fields fall back to defaults.
func NewPool(classifier *Classifier, recorder Recorder, cfg PoolConfig) *Pool {
	def := DefaultPoolConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	return &Pool{
		classifier: classifier,
		recorder:   recorder,
		cfg:        cfg,
		jobs:       make(chan Job, cfg.QueueSize),
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Printf("[classify] pool started workers=%d queue=%d timeout=%s",
		p.cfg.Workers, p.cfg.QueueSize, p.cfg.JobTimeout)
}

// Submit enqueues a job without blocking. Returns false when the job was
// dropped because the queue is full or the pool has stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		metrics.ClassifyJobsDropped.WithLabelValues("shutdown").Inc()
		log.Printf("[classify] pool stopped, dropping job=%s user=%s", job.ID, job.UserID)
		return false
	}
	select {
	case p.jobs <- job:
		metrics.ClassifyQueueDepth.Inc()
		return true
	default:
		metrics.ClassifyJobsDropped.WithLabelValues("queue_full").Inc()
		log.Printf("[classify] queue full, dropping job=%s user=%s", job.ID, job.UserID)
		return false
	}
}

// Stop drains the queue and waits for in-flight jobs to finish. The stopped
// flag is flipped under the write lock, so no Submit can be holding the
// channel when it closes. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	log.Printf("[classify] pool stopped")
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		metrics.ClassifyQueueDepth.Dec()
		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	start := time.Now()
	defer func() {
		metrics.ClassifyJobDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.JobTimeout)
	defer cancel()

	hits := p.classifier.Classify(ctx, Message{
		ConversationID: job.ConversationID,
		Text:           job.Text,
	})

	// A timed-out job records nothing: partial detector coverage would
	// skew the counters, and the signal is probabilistic anyway.
	if ctx.Err() != nil {
		metrics.ClassifyJobsDropped.WithLabelValues("timeout").Inc()
		log.Printf("[classify] job=%s user=%s timed out after %s, dropping",
			job.ID, job.UserID, p.cfg.JobTimeout)
		return
	}

	if len(hits) == 0 {
		return
	}

	if err := p.recorder.Record(ctx, job.UserID, hits); err != nil {
		// Missed classification, accepted risk. Never retried: counter
		// appends are not idempotent on resubmission.
		log.Printf("[classify] job=%s user=%s record failed: %v", job.ID, job.UserID, err)
		return
	}
	log.Printf("[classify] job=%s user=%s recorded %d hit(s)", job.ID, job.UserID, len(hits))
}
