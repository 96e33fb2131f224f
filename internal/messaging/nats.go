// Package messaging provides a NATS client wrapper for the Sentinel
// services. It handles connection lifecycle and the subjects that tie the
// pipeline to its collaborators: the inbound submit request/reply used by
// the chat transport, the classification job queue, the escalation queue
// consumed by the review tool, and the outbound delivery and
// conversation-routing subjects.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used across Sentinel services.
const (
	SubjectSubmit      = "safety.submit"     // request/reply from the transport
	SubjectClassify    = "safety.classify"   // classification job queue
	SubjectEscalation  = "safety.escalation" // review-queue collaborator
	SubjectDeliver     = "chat.deliver"      // + .<conversation_id>
	SubjectFolderRoute = "chat.folder_route" // conversation-routing collaborator
)

// ClassifyQueueGroup is the queue group classifier instances join so each
// job is handled by exactly one of them.
const ClassifyQueueGroup = "classifiers"

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "sentinel",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeSubmit subscribes to submit requests from the chat transport.
// The handler receives the raw message so it can reply on the inbox
// subject with the send outcome.
func (c *NATSClient) SubscribeSubmit(handler func(msg *nats.Msg)) error {
	return c.Subscribe(SubjectSubmit, handler)
}

// PublishClassifyJob enqueues a classification job.
func (c *NATSClient) PublishClassifyJob(data []byte) error {
	return c.Publish(SubjectClassify, data)
}

// QueueSubscribeClassify joins the classifier queue group so each job is
// delivered to exactly one classifier instance.
func (c *NATSClient) QueueSubscribeClassify(handler func(data []byte)) error {
	sub, err := c.conn.QueueSubscribe(SubjectClassify, ClassifyQueueGroup, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats queue subscribe %s: %w", SubjectClassify, err)
	}

	c.mu.Lock()
	c.subs[SubjectClassify] = sub
	c.mu.Unlock()
	return nil
}

// PublishEscalation publishes an escalation record for the review
// collaborator. Delivery is at-least-once; the receiver deduplicates on
// (user, category, occurred_at).
func (c *NATSClient) PublishEscalation(data []byte) error {
	return c.Publish(SubjectEscalation, data)
}

// PublishDelivery hands an allowed message to the transport's delivery
// subject for the conversation.
func (c *NATSClient) PublishDelivery(conversationID string, data []byte) error {
	return c.Publish(SubjectDeliver+"."+conversationID, data)
}

// PublishFolderRoute asks the conversation-routing collaborator to move a
// conversation to the separate folder.
func (c *NATSClient) PublishFolderRoute(data []byte) error {
	return c.Publish(SubjectFolderRoute, data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
